package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	nextID int64
	teams  map[int64]team.Team
	now    func() time.Time
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	repo := &TeamRepository{
		teams: make(map[int64]team.Team, len(teams)),
		now:   time.Now,
	}
	for _, item := range teams {
		repo.nextID++
		item.ID = repo.nextID
		repo.teams[item.ID] = item
	}

	return repo
}

func (r *TeamRepository) Upsert(_ context.Context, item team.Team) (team.UpsertResult, error) {
	if err := item.Validate(); err != nil {
		return team.UpsertResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	matchID := r.matchLocked(item.Slug, item.Name)
	for id, existing := range r.teams {
		if id == matchID {
			continue
		}
		if existing.Slug == item.Slug || existing.Name == item.Name {
			return team.UpsertResult{}, fmt.Errorf("upsert team slug=%s: conflicts with team id=%d", item.Slug, id)
		}
	}

	if matchID > 0 {
		existing := r.teams[matchID]
		item.ID = matchID
		item.CreatedAt = existing.CreatedAt
		item.UpdatedAt = now
		r.teams[matchID] = item
		return team.UpsertResult{ID: matchID, Inserted: false}, nil
	}

	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = now
	item.UpdatedAt = now
	r.teams[item.ID] = item
	return team.UpsertResult{ID: item.ID, Inserted: true}, nil
}

// matchLocked prefers a slug match over a name match.
func (r *TeamRepository) matchLocked(slug, name string) int64 {
	var byName int64
	for id, existing := range r.teams {
		if existing.Slug == slug {
			return id
		}
		if existing.Name == name && (byName == 0 || id < byName) {
			byName = id
		}
	}
	return byName
}

func (r *TeamRepository) List(_ context.Context, filter team.ListFilter) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conference := strings.TrimSpace(filter.Conference)
	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		if conference != "" && (item.Conference == nil || !strings.EqualFold(*item.Conference, conference)) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *TeamRepository) GetBySlug(_ context.Context, slug string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.teams {
		if item.Slug == slug {
			return item, true, nil
		}
	}

	return team.Team{}, false, nil
}
