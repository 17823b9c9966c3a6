// Package redis owns the shared counter store connection. The gateway sits
// on the request hot path, so the pool is tuned for many short commands and
// a broken connection must surface at startup, not under load.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"limitgate/internal/platform/config"
)

// Client wraps go-redis with gateway-specific construction and health checks.
type Client struct {
	*redis.Client
}

// New connects using the configured URL and applies the gateway's pool and
// timeout overrides. A nil client with nil error means Redis is not
// configured and the caller should fall back to the in-memory store.
// Connection failures are returned rather than deferred: a gateway that
// cannot reach its counter store at boot should not start half-limited.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*opts.DialTimeout+time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the counter store is reachable. Served through the
// gateway health endpoint so load balancers drain an instance whose limiter
// would otherwise run fail-open indefinitely.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
