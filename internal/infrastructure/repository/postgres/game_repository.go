package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/b1g-analytics/internal/domain/game"
	qb "github.com/riskibarqy/b1g-analytics/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Upsert(ctx context.Context, item game.Game) (game.UpsertResult, error) {
	if err := item.Validate(); err != nil {
		return game.UpsertResult{}, err
	}

	insertModel := gameInsertModel{
		ExternalID:  item.ExternalID,
		Season:      item.Season,
		Date:        item.Date,
		Status:      item.Status,
		NeutralSite: item.NeutralSite,
		HomeTeamID:  item.HomeTeamID,
		AwayTeamID:  item.AwayTeamID,
		HomeScore:   item.HomeScore,
		AwayScore:   item.AwayScore,
		Venue:       item.Venue,
		RecapURL:    item.RecapURL,
		BoxscoreURL: item.BoxscoreURL,
	}
	query, args, err := qb.InsertModel("games", insertModel, `ON CONFLICT (external_id) DO UPDATE SET
    season = EXCLUDED.season,
    date = EXCLUDED.date,
    status = EXCLUDED.status,
    neutral_site = EXCLUDED.neutral_site,
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    venue = EXCLUDED.venue,
    recap_url = EXCLUDED.recap_url,
    boxscore_url = EXCLUDED.boxscore_url,
    updated_at = NOW()
`+returningUpsert)
	if err != nil {
		return game.UpsertResult{}, fmt.Errorf("build upsert game query: %w", err)
	}

	var ret upsertReturning
	if err := r.db.GetContext(ctx, &ret, query, args...); err != nil {
		return game.UpsertResult{}, classifyWriteError(err, "upsert game external_id="+item.ExternalID)
	}

	return game.UpsertResult{ID: ret.ID, Inserted: ret.Inserted}, nil
}

func (r *GameRepository) GetByExternalID(ctx context.Context, externalID string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game by external id query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by external id: %w", err)
	}

	return gameFromRow(row), true, nil
}

func (r *GameRepository) ListByTeam(ctx context.Context, filter game.ListFilter) ([]game.Game, error) {
	conditions := make([]qb.Condition, 0, 2)
	if filter.TeamID > 0 {
		conditions = append(conditions, qb.Or(
			qb.Eq("home_team_id", filter.TeamID),
			qb.Eq("away_team_id", filter.TeamID),
		))
	}
	if filter.Season > 0 {
		conditions = append(conditions, qb.Eq("season", filter.Season))
	}

	query, args, err := qb.Select("*").From("games").
		Where(conditions...).
		OrderBy("date ASC NULLS LAST", "id").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games by team query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games by team: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}
