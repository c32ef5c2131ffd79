package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis page cache
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache is a PageCache backed by Redis
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ PageCache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return &RedisCache{rdb: rdb, ttl: ttlOrDefault(opts.TTL)}, nil
}

func (r *RedisCache) Get(ctx context.Context, userID string) ([]byte, bool, error) {
	page, err := r.rdb.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached page: %w", err)
	}
	return page, true, nil
}

func (r *RedisCache) Set(ctx context.Context, userID string, page []byte) error {
	if err := r.rdb.Set(ctx, Key(userID), page, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context, userID string) error {
	if err := r.rdb.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached page: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
