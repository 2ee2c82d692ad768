package throttle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "littlelemon:throttle:"

// RedisLimiter is a fixed-window counter: INCR the window key and set its
// expiry on the first hit.
type RedisLimiter struct {
	client redis.UniversalClient
}

func NewRedisLimiter(client redis.UniversalClient) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// NewRedisClient accepts host:port or a redis:// URL.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		if password != "" {
			opts.Password = password
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, r Rate) (bool, time.Duration, error) {
	cacheKey := keyPrefix + key
	count, err := l.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, cacheKey, r.Window).Err(); err != nil {
			return false, 0, err
		}
	}
	if count <= int64(r.Limit) {
		return true, 0, nil
	}

	ttl, err := l.client.TTL(ctx, cacheKey).Result()
	if err != nil || ttl < 0 {
		// A key without expiry would throttle forever; put one back.
		_ = l.client.Expire(ctx, cacheKey, r.Window).Err()
		ttl = r.Window
	}
	return false, ttl, nil
}
