// Package config holds the static per-category rate limit policies.
// The table is built once at process start and treated as immutable:
// nothing in the request path writes to it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"limitgate/internal/ratelimit/models"
)

// Config maps each category to its policy. Construct via DefaultConfig or
// FromEnv; do not mutate after handing it to services.
type Config struct {
	policies map[models.Category]models.Policy

	// GlobalRPS/GlobalBurst drive the process-local overload guard.
	GlobalRPS   float64
	GlobalBurst int

	// StoreTimeout bounds every counter-store round trip.
	StoreTimeout time.Duration
}

// DefaultConfig returns the built-in policy table.
func DefaultConfig() *Config {
	return &Config{
		policies: map[models.Category]models.Policy{
			models.CategoryAuth:      {MaxRequests: 10, Window: time.Minute},
			models.CategoryUpload:    {MaxRequests: 20, Window: 5 * time.Minute},
			models.CategorySearch:    {MaxRequests: 60, Window: time.Minute},
			models.CategoryMessaging: {MaxRequests: 120, Window: time.Minute},
			models.CategoryDefault:   {MaxRequests: 100, Window: time.Minute},
		},
		GlobalRPS:    500,
		GlobalBurst:  1000,
		StoreTimeout: 200 * time.Millisecond,
	}
}

// FromEnv builds the config from environment variables, falling back to
// defaults for anything unset. Override format per category:
//
//	RATELIMIT_AUTH=10/60 (max_requests / window_seconds)
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()

	for _, cat := range []models.Category{
		models.CategoryAuth,
		models.CategoryUpload,
		models.CategorySearch,
		models.CategoryMessaging,
		models.CategoryDefault,
	} {
		envKey := "RATELIMIT_" + strings.ToUpper(string(cat))
		raw := os.Getenv(envKey)
		if raw == "" {
			continue
		}
		policy, err := parsePolicy(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", envKey, err)
		}
		cfg.policies[cat] = policy
	}

	if raw := os.Getenv("RATELIMIT_GLOBAL_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("parse RATELIMIT_GLOBAL_RPS: invalid value %q", raw)
		}
		cfg.GlobalRPS = rps
	}
	if raw := os.Getenv("RATELIMIT_GLOBAL_BURST"); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil || burst <= 0 {
			return nil, fmt.Errorf("parse RATELIMIT_GLOBAL_BURST: invalid value %q", raw)
		}
		cfg.GlobalBurst = burst
	}
	if raw := os.Getenv("RATELIMIT_STORE_TIMEOUT_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("parse RATELIMIT_STORE_TIMEOUT_MS: invalid value %q", raw)
		}
		cfg.StoreTimeout = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}

// Policy returns the policy for a category. Unknown categories fall back to
// the default policy so a classifier bug degrades instead of failing.
func (c *Config) Policy(category models.Category) models.Policy {
	if p, ok := c.policies[category]; ok {
		return p
	}
	return c.policies[models.CategoryDefault]
}

// WithPolicy returns a copy of the config with one category's policy
// replaced. Used by tests; never called after startup.
func (c *Config) WithPolicy(category models.Category, policy models.Policy) *Config {
	clone := *c
	clone.policies = make(map[models.Category]models.Policy, len(c.policies))
	for k, v := range c.policies {
		clone.policies[k] = v
	}
	clone.policies[category] = policy
	return &clone
}

func parsePolicy(raw string) (models.Policy, error) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return models.Policy{}, fmt.Errorf("expected max_requests/window_seconds, got %q", raw)
	}
	maxRequests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return models.Policy{}, fmt.Errorf("invalid max_requests %q", parts[0])
	}
	windowSeconds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return models.Policy{}, fmt.Errorf("invalid window_seconds %q", parts[1])
	}
	policy := models.Policy{
		MaxRequests: maxRequests,
		Window:      time.Duration(windowSeconds) * time.Second,
	}
	if !policy.Valid() {
		return models.Policy{}, fmt.Errorf("policy values must be positive, got %q", raw)
	}
	return policy, nil
}
