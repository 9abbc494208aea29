package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	// Upsert matches an existing team by slug or name and refreshes it,
	// otherwise inserts a new row.
	Upsert(ctx context.Context, item Team) (UpsertResult, error)
	List(ctx context.Context, filter ListFilter) ([]Team, error)
	GetBySlug(ctx context.Context, slug string) (Team, bool, error)
}
