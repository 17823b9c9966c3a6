package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"limitgate/internal/platform/httputil"
	"limitgate/internal/ratelimit/classifier"
	"limitgate/internal/ratelimit/metrics"
	"limitgate/internal/ratelimit/models"
	"limitgate/internal/ratelimit/ports"
)

// RateLimiter is the decision gate contract the middleware depends on.
type RateLimiter interface {
	Check(ctx context.Context, identity models.Identity, category models.Category) (*models.Decision, error)
}

// IdentityResolver derives the caller's rate limit key from the request.
type IdentityResolver interface {
	Resolve(r *http.Request) models.Identity
}

// Throttle is the process-wide overload valve. RetryAfter is the backoff
// hint, in seconds, written on rejections.
type Throttle interface {
	Check() bool
	RetryAfter() int
}

type Middleware struct {
	limiter  RateLimiter
	resolver IdentityResolver
	throttle Throttle
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    ports.AuditPublisher
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithThrottle attaches the global throttle.
func WithThrottle(t Throttle) Option {
	return func(m *Middleware) {
		m.throttle = t
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mx
	}
}

// WithAuditPublisher attaches the security audit sink.
func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(m *Middleware) {
		m.audit = publisher
	}
}

func New(limiter RateLimiter, resolver IdentityResolver, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter:  limiter,
		resolver: resolver,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit classifies the request, checks the caller's counter and either
// short-circuits with 429 or forwards downstream with quota headers set.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		identity := m.resolver.Resolve(r)
		category := classifier.Classify(r.URL.Path, r.Method)

		decision, err := m.limiter.Check(r.Context(), identity, category)
		if err != nil {
			// Fail open: availability of the protected service beats strict
			// limiting when the counter store is down.
			m.logger.WarnContext(r.Context(), "rate limit check failed, failing open",
				"error", err,
				"identifier", identity.String(),
				"category", category.String(),
			)
			if m.metrics != nil {
				m.metrics.RecordStoreFailure()
			}
			next.ServeHTTP(w, r)
			return
		}

		// Quota headers go on every response, allowed or not.
		addRateLimitHeaders(w, decision)

		if !decision.Allowed {
			writeRateLimitExceeded(w, decision)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GlobalThrottle rejects with 503 when the process-wide valve is closed.
func (m *Middleware) GlobalThrottle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled || m.throttle == nil {
			next.ServeHTTP(w, r)
			return
		}

		if !m.throttle.Check() {
			if m.metrics != nil {
				m.metrics.RecordGlobalThrottled()
			}
			m.logger.WarnContext(r.Context(), "global throttle engaged", "path", r.URL.Path)
			writeServiceOverloaded(w, m.throttle.RetryAfter())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, decision *models.Decision) {
	if decision == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, decision *models.Decision) {
	w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "Rate limit exceeded",
		RetryAfter: decision.RetryAfter,
	})
}

func writeServiceOverloaded(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	httputil.WriteJSON(w, http.StatusServiceUnavailable, &models.ServiceOverloadedResponse{
		Error:      "service_unavailable",
		Message:    "Service is temporarily overloaded. Please try again later.",
		RetryAfter: retryAfter,
	})
}
