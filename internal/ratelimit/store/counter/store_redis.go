package counter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the counter on Redis. INCR is atomic on the server,
// so concurrent gateway instances share one consistent window per key.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Incr pipelines INCR+TTL in one round trip. EXPIRE is only issued when the
// key carries no TTL yet (first request of the window), which keeps the
// window fixed rather than sliding.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	p := s.client.Pipeline()
	incrResult := p.Incr(ctx, key)
	ttlResult := p.TTL(ctx, key)

	if _, err := p.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("increment %s: %w", key, err)
	}

	count, err := incrResult.Result()
	if err != nil {
		return 0, 0, fmt.Errorf("increment %s: %w", key, err)
	}

	ttl, err := ttlResult.Result()
	if err != nil || ttl < 0 {
		// TTL returns -1 for a key without expiry (we just created it via
		// INCR) and -2 for a missing key. Either way the window starts now.
		ttl = window
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("set window for %s: %w", key, err)
		}
	}

	return count, ttl, nil
}

// Peek reads the counter without touching it.
func (s *RedisStore) Peek(ctx context.Context, key string) (int64, time.Duration, error) {
	p := s.client.Pipeline()
	getResult := p.Get(ctx, key)
	ttlResult := p.TTL(ctx, key)

	if _, err := p.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("peek %s: %w", key, err)
	}

	count, err := getResult.Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("peek %s: %w", key, err)
	}

	ttl, err := ttlResult.Result()
	if err != nil || ttl < 0 {
		ttl = 0
	}
	return count, ttl, nil
}

// Reset clears the counter for a key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}
