package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightpath/coaching-api/internal/config"
	"github.com/brightpath/coaching-api/internal/pkg/logger"
)

// Limiter throttles form submissions per client IP using an atomic
// Redis Lua script. A check-then-INCR sequence would race under
// concurrent submissions, so the check and increment happen in one
// script call.
type Limiter struct {
	redis        *redis.Client
	maxPerMinute int
	limitScript  *redis.Script
}

const defaultMaxPerMinute = 10

// Lua script: increment the window counter only when it is still under
// the limit, setting the TTL on first use of the window.
const limitLuaScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")
if current >= limit then
    return {0, current}
end

local updated = redis.call("INCR", key)
if updated == 1 then
    redis.call("EXPIRE", key, ttl)
end
return {1, updated}
`

// New builds a limiter from config. It returns nil when no Redis
// address is configured; a nil limiter allows everything.
func New(cfg config.RedisConfig) *Limiter {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	max := cfg.MaxPerMinute
	if max <= 0 {
		max = defaultMaxPerMinute
	}
	return NewWithClient(client, max)
}

// NewWithClient builds a limiter around an existing Redis client.
func NewWithClient(client *redis.Client, maxPerMinute int) *Limiter {
	return &Limiter{
		redis:        client,
		maxPerMinute: maxPerMinute,
		limitScript:  redis.NewScript(limitLuaScript),
	}
}

// Allow reports whether another submission from this IP fits in the
// current one-minute window. Redis being unreachable fails open: a
// broken limiter must not take the forms down with it.
func (l *Limiter) Allow(ctx context.Context, ip string) bool {
	if l == nil {
		return true
	}

	window := time.Now().Unix() / 60
	key := fmt.Sprintf("ratelimit:form:%s:%d", ip, window)

	result, err := l.limitScript.Run(ctx, l.redis, []string{key},
		l.maxPerMinute, 120).Result()
	if err != nil {
		logger.Warn("Rate limit check failed, allowing request",
			"ip", ip, "error", err.Error())
		return true
	}

	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return true
	}
	allowed, _ := values[0].(int64)
	if allowed != 1 {
		count, _ := values[1].(int64)
		logger.Warn("Form submission rate limited", "ip", ip, "count", count)
		return false
	}
	return true
}

// Close releases the underlying Redis connection.
func (l *Limiter) Close() error {
	if l == nil || l.redis == nil {
		return nil
	}
	return l.redis.Close()
}
