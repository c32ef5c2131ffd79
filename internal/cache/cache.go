// Package cache holds the per-user journal page cache.
package cache

import (
	"context"
	"time"

	"github.com/julianstephens/habitlens/internal/constants"
)

// PageCache stores one rendered journal page per user
type PageCache interface {
	// Get returns the cached page and whether it was present.
	Get(ctx context.Context, userID string) ([]byte, bool, error)
	Set(ctx context.Context, userID string, page []byte) error
	Invalidate(ctx context.Context, userID string) error
	Close() error
}

// Key returns the cache key for a user's journal page
func Key(userID string) string {
	return constants.CacheKeyPrefix + userID
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return constants.DefaultCacheTTL
	}
	return ttl
}
