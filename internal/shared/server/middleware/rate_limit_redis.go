package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-manager/internal/shared/telemetry"
)

// RedisLimiter counts requests per fixed window in Redis so every API replica
// shares the same budget. A window lasts Burst/Rate seconds and admits Burst requests.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

// Allow fails open when Redis is unreachable.
func (l *RedisLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.client == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	window := time.Duration(float64(rule.Burst) / rule.Rate * float64(time.Second))
	if window <= 0 {
		window = time.Second
	}
	redisKey := l.prefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		telemetry.Warn("ratelimit.redis_error", map[string]any{"error": err.Error()})
		return true, 0
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			telemetry.Warn("ratelimit.redis_error", map[string]any{"error": err.Error()})
		}
	}
	if count <= int64(rule.Burst) {
		return true, 0
	}

	retryAfter, err := l.client.PTTL(ctx, redisKey).Result()
	if err != nil || retryAfter <= 0 {
		retryAfter = window
	}
	return false, retryAfter
}
