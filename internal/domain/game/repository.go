package game

import "context"

// Repository describes game persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, item Game) (UpsertResult, error)
	GetByExternalID(ctx context.Context, externalID string) (Game, bool, error)
	ListByTeam(ctx context.Context, filter ListFilter) ([]Game, error)
}
