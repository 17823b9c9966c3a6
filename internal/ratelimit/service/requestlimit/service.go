// Package requestlimit implements the per-identity decision gate.
package requestlimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"limitgate/internal/ratelimit/config"
	"limitgate/internal/ratelimit/metrics"
	"limitgate/internal/ratelimit/models"
	"limitgate/internal/ratelimit/ports"
)

// Type aliases for interfaces from the ports package so callers don't have
// to import ports directly.
type (
	CounterStore   = ports.CounterStore
	AllowlistStore = ports.AllowlistStore
	AuditPublisher = ports.AuditPublisher
)

type Service struct {
	counters       CounterStore
	allowlist      AllowlistStore
	auditPublisher AuditPublisher
	logger         *slog.Logger
	config         *config.Config
	metrics        *metrics.Metrics
	timeNow        func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTimeNow replaces the clock for tests.
func WithTimeNow(now func() time.Time) Option {
	return func(s *Service) {
		s.timeNow = now
	}
}

func New(counters CounterStore, allowlist AllowlistStore, opts ...Option) (*Service, error) {
	if counters == nil {
		return nil, errors.New("counter store is required")
	}
	if allowlist == nil {
		return nil, errors.New("allowlist store is required")
	}

	svc := &Service{
		counters:  counters,
		allowlist: allowlist,
		config:    config.DefaultConfig(),
		timeNow:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check increments the caller's counter and decides the request. Counter
// store failures are returned as errors; the middleware turns them into a
// fail-open pass, never a client-visible error.
func (s *Service) Check(ctx context.Context, identity models.Identity, category models.Category) (*models.Decision, error) {
	if !category.IsValid() {
		// The classifier is total, so this only fires on a wiring bug.
		// Degrade to the default ceiling instead of refusing to decide.
		category = models.CategoryDefault
	}
	policy := s.config.Policy(category)
	now := s.timeNow()

	allowlisted, err := s.allowlist.IsAllowlisted(ctx, identity.Value)
	if err != nil {
		return nil, fmt.Errorf("check allowlist: %w", err)
	}
	if allowlisted {
		if s.metrics != nil {
			s.metrics.RecordAllowlistBypass(string(identity.Kind))
		}
		ports.LogAudit(ctx, s.logger, s.auditPublisher, "allowlist_bypassed",
			"identifier", identity.String(),
			"category", category.String(),
		)
		return &models.Decision{
			Allowed:   true,
			Bypassed:  true,
			Limit:     policy.MaxRequests,
			Remaining: policy.MaxRequests,
			ResetAt:   now.Add(policy.Window),
		}, nil
	}

	key := models.CounterKey(category, identity)

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	count, ttl, err := s.counters.Incr(storeCtx, key, policy.Window)
	if err != nil {
		return nil, fmt.Errorf("increment counter: %w", err)
	}
	if ttl <= 0 {
		ttl = policy.Window
	}

	if count > int64(policy.MaxRequests) {
		if s.metrics != nil {
			s.metrics.RecordDenied(string(category))
		}
		ports.LogAudit(ctx, s.logger, s.auditPublisher, "rate_limit_exceeded",
			"identifier", identity.String(),
			"category", category.String(),
			"limit", policy.MaxRequests,
			"window_seconds", int(policy.Window.Seconds()),
		)
		return &models.Decision{
			Allowed:    false,
			Limit:      policy.MaxRequests,
			Remaining:  0,
			ResetAt:    now.Add(policy.Window),
			RetryAfter: int(policy.Window.Seconds()),
		}, nil
	}

	if s.metrics != nil {
		s.metrics.RecordAllowed(string(category))
	}
	return &models.Decision{
		Allowed:   true,
		Limit:     policy.MaxRequests,
		Remaining: policy.MaxRequests - int(count),
		ResetAt:   now.Add(ttl),
	}, nil
}

// Peek reads a counter without consuming quota. Used by the admin API.
func (s *Service) Peek(ctx context.Context, identity models.Identity, category models.Category) (count int64, ttl time.Duration, err error) {
	key := models.CounterKey(category, identity)

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	return s.counters.Peek(storeCtx, key)
}

// Reset clears a counter. Used by the admin API.
func (s *Service) Reset(ctx context.Context, identity models.Identity, category models.Category) error {
	key := models.CounterKey(category, identity)

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	return s.counters.Reset(storeCtx, key)
}
