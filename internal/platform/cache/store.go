package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var errNilLoader = errors.New("cache: nil loader")

type item[V any] struct {
	value V
	// deadline is zero for entries that never expire.
	deadline time.Time
}

func (i item[V]) expired(now time.Time) bool {
	return !i.deadline.IsZero() && !now.Before(i.deadline)
}

// Store is a typed in-process cache with per-entry expiry. Concurrent
// GetOrLoad calls for one key share a single loader call.
type Store[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu    sync.Mutex
	items map[string]item[V]
}

// NewStore returns a store whose Set uses ttl. A ttl <= 0 disables expiry.
func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		ttl:   ttl,
		now:   time.Now,
		items: map[string]item[V]{},
	}
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if !ok {
		return zero, false
	}
	if it.expired(s.now()) {
		delete(s.items, key)
		return zero, false
	}
	return it.value, true
}

func (s *Store[V]) Set(ctx context.Context, key string, value V) {
	s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *Store[V]) SetWithTTL(_ context.Context, key string, value V, ttl time.Duration) {
	if key == "" {
		return
	}

	it := item[V]{value: value}
	if ttl > 0 {
		it.deadline = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
}

func (s *Store[V]) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Clear drops every entry. Loads already in flight still store their result.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	clear(s.items)
	s.mu.Unlock()
}

// Len counts live entries and evicts expired ones.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, it := range s.items {
		if it.expired(now) {
			delete(s.items, key)
		}
	}
	return len(s.items)
}

// GetOrLoad returns the cached value for key or calls load once and caches
// its result. Errors are not cached. An empty key bypasses the cache.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	var zero V
	if load == nil {
		return zero, errNilLoader
	}
	if key == "" {
		return load(ctx)
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	res, err, _ := s.group.Do(key, func() (any, error) {
		if v, ok := s.Get(ctx, key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, v)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(V), nil
}
