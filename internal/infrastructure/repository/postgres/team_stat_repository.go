package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
	qb "github.com/riskibarqy/b1g-analytics/internal/platform/querybuilder"
)

type TeamStatRepository struct {
	db *sqlx.DB
}

func NewTeamStatRepository(db *sqlx.DB) *TeamStatRepository {
	return &TeamStatRepository{db: db}
}

func (r *TeamStatRepository) Upsert(ctx context.Context, item teamstat.Stat) (teamstat.UpsertResult, error) {
	query, args, err := qb.InsertModel("team_game_stats", teamStatInsertFromDomain(item), `ON CONFLICT (game_id, team_id) DO UPDATE SET
    opp_team_id = EXCLUDED.opp_team_id,
    is_home = EXCLUDED.is_home,
    points = EXCLUDED.points,
    fgm = EXCLUDED.fgm,
    fga = EXCLUDED.fga,
    fg3m = EXCLUDED.fg3m,
    fg3a = EXCLUDED.fg3a,
    ftm = EXCLUDED.ftm,
    fta = EXCLUDED.fta,
    oreb = EXCLUDED.oreb,
    dreb = EXCLUDED.dreb,
    reb = EXCLUDED.reb,
    ast = EXCLUDED.ast,
    stl = EXCLUDED.stl,
    blk = EXCLUDED.blk,
    tov = EXCLUDED.tov,
    pf = EXCLUDED.pf,
    possessions_est = EXCLUDED.possessions_est,
    updated_at = NOW()
`+returningUpsert)
	if err != nil {
		return teamstat.UpsertResult{}, fmt.Errorf("build upsert team game stat query: %w", err)
	}

	var ret upsertReturning
	if err := r.db.GetContext(ctx, &ret, query, args...); err != nil {
		operation := "upsert team game stat game_id=" + strconv.FormatInt(item.GameID, 10) + " team_id=" + strconv.FormatInt(item.TeamID, 10)
		return teamstat.UpsertResult{}, classifyWriteError(err, operation)
	}

	return teamstat.UpsertResult{ID: ret.ID, Inserted: ret.Inserted}, nil
}

func (r *TeamStatRepository) ListByGame(ctx context.Context, gameID int64) ([]teamstat.Stat, error) {
	query, args, err := qb.Select("*").From("team_game_stats").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("is_home DESC NULLS LAST", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team game stats query: %w", err)
	}

	var rows []teamStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team game stats: %w", err)
	}

	out := make([]teamstat.Stat, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamStatFromRow(row))
	}
	return out, nil
}
