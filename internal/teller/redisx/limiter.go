// Package redisx holds the Redis-backed pieces of teller: the reset request
// throttle and the revoked session list.
package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultLimit  = 5
	DefaultWindow = 15 * time.Minute

	limiterPrefix = "teller:ratelimit:"
)

// FixedWindowLimiter allows Limit hits per key in each Window. The window
// starts at the first hit.
type FixedWindowLimiter struct {
	Client *redis.Client
	Limit  int
	Window time.Duration
}

// NewFixedWindowLimiter applies defaults to non-positive settings.
func NewFixedWindowLimiter(client *redis.Client, limit int, window time.Duration) *FixedWindowLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &FixedWindowLimiter{Client: client, Limit: limit, Window: window}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = limiterPrefix + key

	count, err := l.Client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redisx: incr: %w", err)
	}
	if count == 1 {
		if err := l.Client.Expire(ctx, key, l.Window).Err(); err != nil {
			return false, fmt.Errorf("redisx: expire: %w", err)
		}
	}

	return count <= int64(l.Limit), nil
}
