package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/openlearnco/classgate/pkg/observability"
)

// RedisLimiter is a fixed-window limiter backed by Redis, for deployments
// with more than one gateway instance. Counter and expiry live in Redis;
// a counter key expires when its window ends, which makes an expired
// window indistinguishable from a first attempt.
//
// Redis errors fail open: login availability is worth more than strict
// throttling during a Redis outage.
type RedisLimiter struct {
	client *redis.Client
	config *Config
	logger *observability.Logger
	prefix string
}

// NewRedisLimiter creates a Redis-backed limiter
func NewRedisLimiter(client *redis.Client, config *Config, logger *observability.Logger, prefix string) *RedisLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	if prefix == "" {
		prefix = "loginlimit"
	}
	return &RedisLimiter{
		client: client,
		config: config,
		logger: logger,
		prefix: prefix,
	}
}

func (l *RedisLimiter) key(identifier string) string {
	return fmt.Sprintf("%s:%s", l.prefix, identifier)
}

// Check records one attempt via INCR. Expiry is only armed on a key
// that has none, so the window stays fixed rather than sliding. The
// INCR and TTL read share one pipeline round trip; arming the expiry
// afterwards also heals a counter orphaned by a crash between the two.
func (l *RedisLimiter) Check(ctx context.Context, identifier string) Result {
	key := l.key(identifier)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return l.failOpen(err)
	}

	count := incr.Val()
	ttl := ttlCmd.Val()
	if ttl < 0 {
		if err := l.client.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return l.failOpen(err)
		}
		ttl = l.config.Window
	}

	if count == int64(l.config.MaxAttempts)+1 && l.logger != nil {
		l.logger.WithField("identifier", identifier).
			WithField("attempts", count).
			Warn("rate limit exceeded")
	}

	remaining := l.config.MaxAttempts - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= int64(l.config.MaxAttempts),
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}
}

// Reset deletes the identifier's counter
func (l *RedisLimiter) Reset(ctx context.Context, identifier string) {
	if err := l.client.Del(ctx, l.key(identifier)).Err(); err != nil && l.logger != nil {
		l.logger.WithError(err).WithField("identifier", identifier).
			Warn("failed to reset rate limit counter")
	}
}

func (l *RedisLimiter) failOpen(err error) Result {
	if l.logger != nil {
		l.logger.WithError(err).Warn("redis rate limit check failed, allowing attempt")
	}
	return Result{
		Allowed:   true,
		Remaining: l.config.MaxAttempts - 1,
		ResetAt:   time.Now().Add(l.config.Window),
	}
}
