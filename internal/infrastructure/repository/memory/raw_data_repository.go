package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/b1g-analytics/internal/domain/rawdata"
)

type RawDataRepository struct {
	mu    sync.RWMutex
	items map[string]rawdata.Payload
}

func NewRawDataRepository() *RawDataRepository {
	return &RawDataRepository{items: make(map[string]rawdata.Payload)}
}

func (r *RawDataRepository) UpsertMany(_ context.Context, items []rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.items[item.Source+"|"+item.EntityType+"|"+item.EntityKey] = item
	}
	return nil
}

func (r *RawDataRepository) Get(source, entityType, entityKey string) (rawdata.Payload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[source+"|"+entityType+"|"+entityKey]
	return item, ok
}
