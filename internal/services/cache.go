package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const advertisedCacheKey = "cache:tickets:advertised"

// TicketCache caches the rendered advertised-tickets banner in Redis. A nil
// cache (no Redis configured) is a valid no-op, so the core keeps working
// without it. Cache failures are logged and otherwise ignored; Redis is never
// the source of truth here.
type TicketCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewTicketCache(redisClient *redis.Client, ttl time.Duration) *TicketCache {
	return &TicketCache{Redis: redisClient, TTL: ttl}
}

// GetAdvertised returns the cached banner payload, if any.
func (c *TicketCache) GetAdvertised(ctx context.Context) ([]byte, bool) {
	if c == nil || c.Redis == nil {
		return nil, false
	}

	data, err := c.Redis.Get(ctx, advertisedCacheKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Error("Failed to read advertised tickets cache", "error", err)
		return nil, false
	}
	return data, true
}

func (c *TicketCache) SetAdvertised(ctx context.Context, payload []byte) {
	if c == nil || c.Redis == nil {
		return
	}

	if err := c.Redis.Set(ctx, advertisedCacheKey, payload, c.TTL).Err(); err != nil {
		slog.Error("Failed to write advertised tickets cache", "error", err)
	}
}

// Invalidate drops the cached banner; called after any slot grant, revoke or
// fraud cascade that freed slots.
func (c *TicketCache) Invalidate(ctx context.Context) {
	if c == nil || c.Redis == nil {
		return
	}

	if err := c.Redis.Del(ctx, advertisedCacheKey).Err(); err != nil {
		slog.Error("Failed to invalidate advertised tickets cache", "error", err)
	}
}
