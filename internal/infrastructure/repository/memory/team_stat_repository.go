package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
)

type statKey struct {
	gameID int64
	teamID int64
}

type TeamStatRepository struct {
	mu     sync.RWMutex
	nextID int64
	stats  map[statKey]teamstat.Stat
}

func NewTeamStatRepository() *TeamStatRepository {
	return &TeamStatRepository{stats: make(map[statKey]teamstat.Stat)}
}

func (r *TeamStatRepository) Upsert(_ context.Context, item teamstat.Stat) (teamstat.UpsertResult, error) {
	if item.GameID <= 0 || item.TeamID <= 0 {
		return teamstat.UpsertResult{}, fmt.Errorf("team game stat requires game and team ids")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := statKey{gameID: item.GameID, teamID: item.TeamID}
	if existing, ok := r.stats[key]; ok {
		item.ID = existing.ID
		r.stats[key] = item
		return teamstat.UpsertResult{ID: item.ID, Inserted: false}, nil
	}

	r.nextID++
	item.ID = r.nextID
	r.stats[key] = item
	return teamstat.UpsertResult{ID: item.ID, Inserted: true}, nil
}

func (r *TeamStatRepository) ListByGame(_ context.Context, gameID int64) ([]teamstat.Stat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]teamstat.Stat, 0, 2)
	for key, item := range r.stats {
		if key.gameID == gameID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// Len reports the number of stored rows.
func (r *TeamStatRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stats)
}
