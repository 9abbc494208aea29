package espn

import (
	"context"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/platform/cache"
)

// StoreCache keeps provider bodies in process memory. Used when no redis
// URL is configured.
type StoreCache struct {
	store *cache.Store[[]byte]
}

func NewStoreCache(store *cache.Store[[]byte]) *StoreCache {
	return &StoreCache{store: store}
}

func (s *StoreCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok := s.store.Get(ctx, key)
	return raw, ok, nil
}

func (s *StoreCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.store.SetWithTTL(ctx, key, append([]byte(nil), value...), ttl)
	return nil
}
