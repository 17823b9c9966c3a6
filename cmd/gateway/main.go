package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"limitgate/internal/audit"
	auditkafka "limitgate/internal/audit/kafka"
	"limitgate/internal/jwtauth"
	"limitgate/internal/platform/config"
	"limitgate/internal/platform/httpserver"
	"limitgate/internal/platform/logger"
	"limitgate/internal/platform/middleware/metadata"
	"limitgate/internal/platform/middleware/request"
	platformredis "limitgate/internal/platform/redis"
	"limitgate/internal/ratelimit/admin"
	ratelimitconfig "limitgate/internal/ratelimit/config"
	"limitgate/internal/ratelimit/identity"
	"limitgate/internal/ratelimit/metrics"
	ratelimitmw "limitgate/internal/ratelimit/middleware"
	"limitgate/internal/ratelimit/ports"
	"limitgate/internal/ratelimit/service/globalthrottle"
	"limitgate/internal/ratelimit/service/requestlimit"
	"limitgate/internal/ratelimit/store/allowlist"
	"limitgate/internal/ratelimit/store/counter"
)

// main wires dependencies and keeps the server lifecycle small. All decision
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	limitCfg, err := ratelimitconfig.FromEnv()
	if err != nil {
		log.Error("invalid rate limit configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Counter store: Redis when configured, otherwise process-local memory.
	var counters ports.CounterStore
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		counters = counter.NewRedisStore(redisClient.Client)
		log.Info("using redis counter store")
	} else {
		memStore := counter.NewMemoryStore()
		memStore.StartJanitor(ctx, time.Minute)
		counters = memStore
		log.Info("using in-memory counter store")
	}

	// Allowlist: Postgres when configured, otherwise memory.
	var allowStore ports.AllowlistStore
	var pgStore *allowlist.PostgresStore
	if cfg.Postgres.DSN != "" {
		pgStore, err = allowlist.NewPostgres(cfg.Postgres.DSN)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		allowStore = pgStore
		log.Info("using postgres allowlist store")
	} else {
		allowStore = allowlist.NewMemoryStore()
	}

	// Audit sink: Kafka when brokers are configured, otherwise memory.
	var auditPublisher ports.AuditPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err := auditkafka.NewPublisher(ctx, auditkafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafkaPub.Close(flushCtx); err != nil {
				log.Warn("failed to flush audit events", "error", err)
			}
		}()
		auditPublisher = kafkaPub
		log.Info("audit events published to kafka", "topic", cfg.Kafka.Topic)
	} else {
		auditPublisher = audit.NewInMemoryPublisher()
	}

	mx := metrics.New()

	limiter, err := requestlimit.New(counters, allowStore,
		requestlimit.WithLogger(log),
		requestlimit.WithConfig(limitCfg),
		requestlimit.WithMetrics(mx),
		requestlimit.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("failed to build rate limiter", "error", err)
		os.Exit(1)
	}

	resolver := identity.NewResolver(jwtauth.NewValidator(cfg.Server.JWTSigningKey))
	throttle := globalthrottle.New(limitCfg.GlobalRPS, limitCfg.GlobalBurst)

	mw := ratelimitmw.New(limiter, resolver, log,
		ratelimitmw.WithThrottle(throttle),
		ratelimitmw.WithMetrics(mx),
		ratelimitmw.WithAuditPublisher(auditPublisher),
	)

	upstream, err := upstreamHandler(cfg.Server.Upstream)
	if err != nil {
		log.Error("invalid upstream URL", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(request.RequestID)
	router.Use(metadata.ClientMetadata)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				log.WarnContext(r.Context(), "health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Mount("/admin/ratelimit", admin.NewHandler(allowStore, limiter, log, cfg.Server.AdminToken).Routes())
	router.Group(func(r chi.Router) {
		r.Use(mw.SecurityScan)
		r.Use(mw.GlobalThrottle)
		r.Use(mw.RateLimit)
		r.Handle("/*", upstream)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting limitgate", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if pgStore != nil {
		g.Go(func() error {
			err := pgStore.StartCleanup(gctx, 10*time.Minute)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("gateway terminated", "error", err)
		os.Exit(1)
	}
	log.Info("gateway stopped")
}

// upstreamHandler proxies to the configured upstream, or serves 200 when the
// gateway runs standalone (tests, demos).
func upstreamHandler(rawURL string) (http.Handler, error) {
	if rawURL == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		}), nil
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return httputil.NewSingleHostReverseProxy(target), nil
}
