// Package ratelimit enforces per-credential ingest rate limits.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/netsentry-io/netsentry/internal/metrics"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisRateLimiter creates a sliding-window limiter over an
// existing redis client. limit is the sustained number of events
// allowed per window per key; burst is the extra headroom on top of
// it, so a key may hold up to limit+burst entries inside one window.
func NewRedisRateLimiter(client *redis.Client, limit, burst int, window time.Duration) RateLimiter {
	return &redisRateLimiter{
		client: client,
		limit:  int64(limit) + int64(burst),
		window: window,
	}
}

// Allow implements sliding window rate limiting using Redis
func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - r.window.Nanoseconds()

	// Redis Lua script for atomic rate limiting
	script := `
		local key = KEYS[1]
		local now = tonumber(ARGV[1])
		local window_start = tonumber(ARGV[2])
		local limit = tonumber(ARGV[3])

		-- Remove old entries
		redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

		-- Count current entries
		local current = redis.call('ZCARD', key)

		if current < limit then
			-- Add new entry
			redis.call('ZADD', key, now, now)
			redis.call('EXPIRE', key, 60)
			return 1
		else
			return 0
		end
	`

	result, err := r.client.Eval(ctx, script, []string{"ratelimit:" + key}, now, windowStart, r.limit).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed := result == 1
	if !allowed {
		metrics.RateLimitHits.WithLabelValues(key).Inc()
	}

	return allowed, nil
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// NoOpRateLimiter always allows requests (for testing or disabled rate limiting)
type NoOpRateLimiter struct{}

func (n *NoOpRateLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (n *NoOpRateLimiter) Close() error {
	return nil
}
