package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process PageCache used when no Redis is configured
type MemoryCache struct {
	items *gocache.Cache
}

var _ PageCache = (*MemoryCache)(nil)

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	ttl = ttlOrDefault(ttl)
	return &MemoryCache{items: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(ctx context.Context, userID string) ([]byte, bool, error) {
	v, ok := m.items.Get(Key(userID))
	if !ok {
		return nil, false, nil
	}
	page, ok := v.([]byte)
	if !ok {
		m.items.Delete(Key(userID))
		return nil, false, nil
	}
	out := make([]byte, len(page))
	copy(out, page)
	return out, true, nil
}

func (m *MemoryCache) Set(ctx context.Context, userID string, page []byte) error {
	stored := make([]byte, len(page))
	copy(stored, page)
	m.items.SetDefault(Key(userID), stored)
	return nil
}

func (m *MemoryCache) Invalidate(ctx context.Context, userID string) error {
	m.items.Delete(Key(userID))
	return nil
}

func (m *MemoryCache) Close() error {
	m.items.Flush()
	return nil
}
