package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openquest/questlog/internal/ports"
)

// RedisLimiter is a sliding-window limiter backed by a Redis sorted set
// per key, scored by attempt timestamp. Safe across replicas.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	max    int
	window time.Duration
	now    func() time.Time
}

// RedisOption configures a RedisLimiter.
type RedisOption func(*RedisLimiter)

// WithRedisNow overrides the clock, for tests.
func WithRedisNow(now func() time.Time) RedisOption {
	return func(l *RedisLimiter) { l.now = now }
}

// NewRedisLimiter creates a Redis-backed limiter allowing max attempts
// per window per key.
func NewRedisLimiter(client redis.UniversalClient, max int, window time.Duration, opts ...RedisOption) *RedisLimiter {
	l := &RedisLimiter{
		client: client,
		prefix: "ratelimit:",
		max:    max,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records an attempt for key and reports whether it is within the
// window budget. The trim, count, add, and expire run in one pipeline.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (ports.RateDecision, error) {
	now := l.now()
	cutoff := now.Add(-l.window)
	redisKey := l.prefix + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", formatScore(cutoff))
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return ports.RateDecision{}, fmt.Errorf("ratelimit pipeline: %w", err)
	}

	count := int(countCmd.Val())
	if count >= l.max {
		retryAfter := l.window
		if oldest := oldestCmd.Val(); len(oldest) == 1 {
			oldestAt := timeFromScore(oldest[0].Score)
			retryAfter = oldestAt.Add(l.window).Sub(now)
		}
		return ports.RateDecision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	add := l.client.TxPipeline()
	add.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	// Key can expire once the newest attempt ages out of the window.
	add.Expire(ctx, redisKey, l.window)
	if _, err := add.Exec(ctx); err != nil {
		return ports.RateDecision{}, fmt.Errorf("ratelimit record: %w", err)
	}

	return ports.RateDecision{Allowed: true, Remaining: l.max - count - 1}, nil
}

func formatScore(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

func timeFromScore(score float64) time.Time {
	return time.Unix(0, int64(score))
}

var _ ports.RateLimiter = (*RedisLimiter)(nil)
