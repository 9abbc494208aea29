package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/domain/game"
	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
	basecache "github.com/riskibarqy/b1g-analytics/internal/platform/cache"
)

// lookup caches misses as well as hits.
type lookup[T any] struct {
	value T
	found bool
}

// TeamRepository caches team reads. Any write clears every cached read.
type TeamRepository struct {
	next   team.Repository
	lists  *basecache.Store[[]team.Team]
	bySlug *basecache.Store[lookup[team.Team]]
}

func NewTeamRepository(next team.Repository, ttl time.Duration) *TeamRepository {
	return &TeamRepository{
		next:   next,
		lists:  basecache.NewStore[[]team.Team](ttl),
		bySlug: basecache.NewStore[lookup[team.Team]](ttl),
	}
}

func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) (team.UpsertResult, error) {
	result, err := r.next.Upsert(ctx, item)
	if err != nil {
		return team.UpsertResult{}, err
	}

	r.lists.Clear()
	r.bySlug.Clear()
	return result, nil
}

func (r *TeamRepository) List(ctx context.Context, filter team.ListFilter) ([]team.Team, error) {
	key := "conference:" + strings.ToLower(strings.TrimSpace(filter.Conference))
	items, err := r.lists.GetOrLoad(ctx, key, func(ctx context.Context) ([]team.Team, error) {
		return r.next.List(ctx, filter)
	})
	if err != nil {
		return nil, err
	}

	// Callers may sort or append; hand out a copy.
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetBySlug(ctx context.Context, slug string) (team.Team, bool, error) {
	hit, err := r.bySlug.GetOrLoad(ctx, slug, func(ctx context.Context) (lookup[team.Team], error) {
		item, found, err := r.next.GetBySlug(ctx, slug)
		return lookup[team.Team]{value: item, found: found}, err
	})
	if err != nil {
		return team.Team{}, false, err
	}
	return hit.value, hit.found, nil
}

// GameRepository caches lookups by ESPN event id. Team game lists read
// through since they change with every ingest.
type GameRepository struct {
	next         game.Repository
	byExternalID *basecache.Store[lookup[game.Game]]
}

func NewGameRepository(next game.Repository, ttl time.Duration) *GameRepository {
	return &GameRepository{
		next:         next,
		byExternalID: basecache.NewStore[lookup[game.Game]](ttl),
	}
}

func (r *GameRepository) Upsert(ctx context.Context, item game.Game) (game.UpsertResult, error) {
	result, err := r.next.Upsert(ctx, item)
	if err != nil {
		return game.UpsertResult{}, err
	}

	r.byExternalID.Delete(ctx, item.ExternalID)
	return result, nil
}

func (r *GameRepository) GetByExternalID(ctx context.Context, externalID string) (game.Game, bool, error) {
	hit, err := r.byExternalID.GetOrLoad(ctx, externalID, func(ctx context.Context) (lookup[game.Game], error) {
		item, found, err := r.next.GetByExternalID(ctx, externalID)
		return lookup[game.Game]{value: item, found: found}, err
	})
	if err != nil {
		return game.Game{}, false, err
	}
	return hit.value, hit.found, nil
}

func (r *GameRepository) ListByTeam(ctx context.Context, filter game.ListFilter) ([]game.Game, error) {
	return r.next.ListByTeam(ctx, filter)
}
