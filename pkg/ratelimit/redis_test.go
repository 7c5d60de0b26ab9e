package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, config *Config) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisLimiter(client, config, testLogger(), "loginlimit"), mr
}

func TestRedisLimiterAllowsUpToMax(t *testing.T) {
	limiter, _ := newRedisLimiter(t, DefaultConfig())
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		result := limiter.Check(ctx, "ip:10.0.0.1")
		assert.True(t, result.Allowed, "attempt %d should be allowed", i)
		assert.Equal(t, 5-i, result.Remaining)
	}

	result := limiter.Check(ctx, "ip:10.0.0.1")
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestRedisLimiterWindowExpiry(t *testing.T) {
	limiter, mr := newRedisLimiter(t, DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		limiter.Check(ctx, "ip:10.0.0.1")
	}
	require.False(t, limiter.Check(ctx, "ip:10.0.0.1").Allowed)

	mr.FastForward(15*time.Minute + time.Second)

	result := limiter.Check(ctx, "ip:10.0.0.1")
	assert.True(t, result.Allowed)
	assert.Equal(t, 4, result.Remaining)
}

func TestRedisLimiterReset(t *testing.T) {
	limiter, _ := newRedisLimiter(t, DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		limiter.Check(ctx, "account:alice")
	}
	require.False(t, limiter.Check(ctx, "account:alice").Allowed)

	limiter.Reset(ctx, "account:alice")

	result := limiter.Check(ctx, "account:alice")
	assert.True(t, result.Allowed)
	assert.Equal(t, 4, result.Remaining)
}

func TestRedisLimiterIdentifiersIndependent(t *testing.T) {
	limiter, _ := newRedisLimiter(t, DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		limiter.Check(ctx, "ip:10.0.0.1")
	}

	assert.True(t, limiter.Check(ctx, "ip:10.0.0.2").Allowed)
	assert.True(t, limiter.Check(ctx, "account:alice").Allowed)
}

func TestRedisLimiterKeyPrefix(t *testing.T) {
	limiter, mr := newRedisLimiter(t, DefaultConfig())

	limiter.Check(context.Background(), "ip:10.0.0.1")

	assert.True(t, mr.Exists("loginlimit:ip:10.0.0.1"))
}

func TestRedisLimiterRearmsMissingExpiry(t *testing.T) {
	limiter, mr := newRedisLimiter(t, DefaultConfig())
	ctx := context.Background()

	// A crash between creating the counter and arming its expiry leaves
	// a key with no TTL; the next check must give it one
	require.NoError(t, mr.Set("loginlimit:ip:10.0.0.1", "3"))
	require.Equal(t, time.Duration(0), mr.TTL("loginlimit:ip:10.0.0.1"))

	result := limiter.Check(ctx, "ip:10.0.0.1")
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)
	assert.Equal(t, 15*time.Minute, mr.TTL("loginlimit:ip:10.0.0.1"))

	// The healed counter expires like any other window
	mr.FastForward(15*time.Minute + time.Second)
	result = limiter.Check(ctx, "ip:10.0.0.1")
	assert.Equal(t, 4, result.Remaining)
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	limiter := NewRedisLimiter(client, DefaultConfig(), testLogger(), "")
	ctx := context.Background()

	mr.Close()

	result := limiter.Check(ctx, "ip:10.0.0.1")
	assert.True(t, result.Allowed, "a redis outage must not lock users out")
	assert.Equal(t, 4, result.Remaining)
}
