// Package ratelimit implements a fixed-window request limiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// counter is the subset of redis.Cmdable the limiter needs.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// Redis counts requests per key in windows of fixed length. The window
// starts with the first request for the key.
type Redis struct {
	rdb    counter
	limit  int
	window time.Duration
}

func NewRedis(rdb redis.Cmdable, limit int, window time.Duration) *Redis {
	return &Redis{rdb: rdb, limit: limit, window: window}
}

func (l *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	key = keyPrefix + key

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis incr: %w", err)
	}

	reset := l.window
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis expire: %w", err)
		}
	} else if ttl, err := l.rdb.TTL(ctx, key).Result(); err == nil {
		if ttl > 0 {
			reset = ttl
		} else {
			// key lost its expiry (e.g. the EXPIRE after the first INCR failed)
			_ = l.rdb.Expire(ctx, key, l.window).Err()
		}
	}

	remaining := l.limit - int(n)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   int(n) <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
