package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a sliding window limiter shared across instances through a
// Redis sorted set per key.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter parses a redis:// URL and returns a limiter backed by it.
func NewRedisLimiter(redisURL string, limit int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisLimiter{
		client: redis.NewClient(opts),
		prefix: "vouchy:ratelimit:",
		limit:  limit,
		window: window,
	}, nil
}

// allowScript trims the window, counts and records in one round trip so
// concurrent callers cannot both take the last slot. Scores are microseconds
// to stay exact in Lua numbers.
var allowScript = redis.NewScript(`
local now = tonumber(ARGV[1])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - tonumber(ARGV[2]))
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	allowed, err := allowScript.Run(ctx, l.client, []string{l.prefix + key},
		time.Now().UnixMicro(),
		l.window.Microseconds(),
		l.limit,
		uuid.NewString(),
		l.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return allowed == 1, nil
}

// Close releases the underlying connection pool.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
