package counter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), server
}

func TestRedisStore_Incr(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisStore(t)

	t.Run("first increment creates key with window TTL", func(t *testing.T) {
		count, ttl, err := store.Incr(ctx, "ratelimit:auth:ip:10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("increment does not reset TTL", func(t *testing.T) {
		key := "ratelimit:auth:ip:10.0.0.2"
		_, _, err := store.Incr(ctx, key, time.Minute)
		require.NoError(t, err)

		server.FastForward(30 * time.Second)

		count, ttl, err := store.Incr(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.Equal(t, 30*time.Second, ttl)
	})

	t.Run("expired key starts a fresh window", func(t *testing.T) {
		key := "ratelimit:auth:ip:10.0.0.3"
		for range 5 {
			_, _, err := store.Incr(ctx, key, time.Minute)
			require.NoError(t, err)
		}

		server.FastForward(61 * time.Second)

		count, ttl, err := store.Incr(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.Equal(t, time.Minute, ttl)
	})
}

func TestRedisStore_Peek(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	count, ttl, err := store.Peek(ctx, "ratelimit:default:ip:absent")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, ttl)

	_, _, err = store.Incr(ctx, "ratelimit:default:ip:10.0.0.4", time.Minute)
	require.NoError(t, err)

	count, ttl, err = store.Peek(ctx, "ratelimit:default:ip:10.0.0.4")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, ttl)

	// Peek must not consume quota.
	count, _, err = store.Peek(ctx, "ratelimit:default:ip:10.0.0.4")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedisStore_Reset(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	key := "ratelimit:default:user:42"
	_, _, err := store.Incr(ctx, key, time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx, key))

	count, _, err := store.Peek(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, count)
}
