package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/domain/game"
)

type GameRepository struct {
	mu         sync.RWMutex
	nextID     int64
	games      map[int64]game.Game
	byExternal map[string]int64
	now        func() time.Time
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		games:      make(map[int64]game.Game),
		byExternal: make(map[string]int64),
		now:        time.Now,
	}
}

func (r *GameRepository) Upsert(_ context.Context, item game.Game) (game.UpsertResult, error) {
	if err := item.Validate(); err != nil {
		return game.UpsertResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item.UpdatedAt = r.now().UTC()
	if id, ok := r.byExternal[item.ExternalID]; ok {
		item.ID = id
		r.games[id] = item
		return game.UpsertResult{ID: id, Inserted: false}, nil
	}

	r.nextID++
	item.ID = r.nextID
	r.games[item.ID] = item
	r.byExternal[item.ExternalID] = item.ID
	return game.UpsertResult{ID: item.ID, Inserted: true}, nil
}

func (r *GameRepository) GetByExternalID(_ context.Context, externalID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExternal[externalID]
	if !ok {
		return game.Game{}, false, nil
	}
	return r.games[id], true, nil
}

// ListByTeam orders games by date, undated games last, then by id.
func (r *GameRepository) ListByTeam(_ context.Context, filter game.ListFilter) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.games {
		if filter.TeamID > 0 && item.HomeTeamID != filter.TeamID && item.AwayTeamID != filter.TeamID {
			continue
		}
		if filter.Season > 0 && (item.Season == nil || *item.Season != filter.Season) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		left, right := out[i].Date, out[j].Date
		switch {
		case left == nil && right == nil:
			return out[i].ID < out[j].ID
		case left == nil:
			return false
		case right == nil:
			return true
		case *left != *right:
			return *left < *right
		default:
			return out[i].ID < out[j].ID
		}
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

// Len reports the number of stored games.
func (r *GameRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
