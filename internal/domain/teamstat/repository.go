package teamstat

import "context"

// Repository describes team game stat persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, item Stat) (UpsertResult, error)
	ListByGame(ctx context.Context, gameID int64) ([]Stat, error)
}
