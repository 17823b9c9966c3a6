package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limitgate/internal/platform/config"
)

func testConfig(url string) config.RedisConfig {
	return config.RedisConfig{
		URL:          url,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  200 * time.Millisecond,
		WriteTimeout: 200 * time.Millisecond,
	}
}

func TestNew_UnconfiguredReturnsNil(t *testing.T) {
	client, err := New(config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(testConfig("not-a-redis-url"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestNew_UnreachableServer(t *testing.T) {
	_, err := New(testConfig("redis://127.0.0.1:1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestNew_ConnectsAndReportsHealth(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(testConfig("redis://" + mr.Addr()))
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	assert.NoError(t, client.Health(t.Context()))

	mr.Close()
	assert.Error(t, client.Health(t.Context()))
}
