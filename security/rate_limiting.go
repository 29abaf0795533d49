package security

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request limiter backed by Redis INCR. One
// window counter exists per caller (auth record id, or client IP for
// anonymous requests).
type RateLimiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: redisClient, limit: limit, window: window}
}

// Allow counts a request for key and reports whether it is within the
// window's limit. Redis failures allow the request; throttling is best
// effort, never an outage amplifier.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := r.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		r.redis.Expire(ctx, redisKey, r.window)
	}

	return count <= r.limit, nil
}

// Wrap applies the limiter in front of a route handler.
func (r *RateLimiter) Wrap(next func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := e.RealIP()
		if e.Auth != nil {
			key = "user:" + e.Auth.Id
		}

		ok, _ := r.Allow(e.Request.Context(), key)
		if !ok {
			return apis.NewApiError(429, "Rate limit exceeded. Please try again later.", nil)
		}

		return next(e)
	}
}
