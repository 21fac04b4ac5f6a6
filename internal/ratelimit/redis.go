package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// RedisLimiter is a fixed-window counter shared by all replicas. A counter
// without an expiry gets one, so a key never outlives its window.
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit actions per identity and bucket per window.
func NewRedisLimiter(client redis.UniversalClient, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Check increments the window counter and compares it to the limit.
func (l *RedisLimiter) Check(ctx context.Context, identity, bucket string) (Decision, error) {
	key := keyPrefix + bucket + ":" + identity

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("redis rate limit: %w", err)
	}

	// PTTL reports -1 for a key without expiry.
	if ttl.Val() < 0 {
		if err := l.client.PExpire(ctx, key, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis rate limit expire: %w", err)
		}
	}

	count := int(incr.Val())
	if count <= l.limit {
		return Decision{Allowed: true, Remaining: l.limit - count}, nil
	}

	retryAfter := ttl.Val()
	if retryAfter <= 0 {
		retryAfter = l.window
	}
	return Decision{Allowed: false, RetryAfter: retryAfter}, nil
}
