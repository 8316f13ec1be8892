package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/creativa-studio/lead-service/internal/config"
)

// RateLimiter bounds public submissions per client key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisRateLimiter implements a fixed-window counter on Redis.
type RedisRateLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewRedisRateLimiter builds a limiter from configuration.
func NewRedisRateLimiter(client *redis.Client, cfg config.RateLimitConfig) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		max:    cfg.MaxPerWindow,
		window: cfg.Window(),
	}
}

// Allow increments the window counter for key and reports whether the caller
// is still under the limit.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.client == nil || l.max <= 0 {
		return true, nil
	}

	redisKey := "leads:submit:" + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, err
		}
	}
	return count <= l.max, nil
}
