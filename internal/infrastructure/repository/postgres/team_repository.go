package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
	qb "github.com/riskibarqy/b1g-analytics/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// teamMatchUpdate refreshes the single row whose slug or name matches item.
// A slug match wins over a name match, then the lowest id.
func teamMatchUpdate(item team.Team) (string, []any, error) {
	return qb.Update("teams").
		Set("slug", item.Slug).
		Set("name", item.Name).
		Set("short_name", item.ShortName).
		Set("conference", item.Conference).
		Set("logo_url", item.LogoURL).
		SetExpr("updated_at", "NOW()").
		Where(qb.Expr(
			"id = (SELECT id FROM teams WHERE slug = ? OR name = ? ORDER BY CASE WHEN slug = ? THEN 0 ELSE 1 END, id LIMIT 1)",
			item.Slug, item.Name, item.Slug,
		)).
		Suffix("RETURNING id").
		ToSQL()
}

// Upsert refreshes the row matching slug or name, preferring the slug match,
// and inserts when neither exists. Both steps share one transaction.
func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) (team.UpsertResult, error) {
	if err := item.Validate(); err != nil {
		return team.UpsertResult{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return team.UpsertResult{}, fmt.Errorf("begin tx upsert team: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updateQuery, updateArgs, err := teamMatchUpdate(item)
	if err != nil {
		return team.UpsertResult{}, fmt.Errorf("build update team query: %w", err)
	}

	var matchedID int64
	err = tx.GetContext(ctx, &matchedID, updateQuery, updateArgs...)
	switch {
	case err == nil:
		if err := tx.Commit(); err != nil {
			return team.UpsertResult{}, fmt.Errorf("commit upsert team tx: %w", err)
		}
		return team.UpsertResult{ID: matchedID, Inserted: false}, nil
	case !isNotFound(err):
		return team.UpsertResult{}, classifyWriteError(err, "update team slug="+item.Slug)
	}

	insertModel := teamInsertModel{
		Slug:       item.Slug,
		Name:       item.Name,
		ShortName:  item.ShortName,
		Conference: item.Conference,
		LogoURL:    item.LogoURL,
	}
	insertQuery, insertArgs, err := qb.InsertModel("teams", insertModel, `ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name,
    short_name = EXCLUDED.short_name,
    conference = EXCLUDED.conference,
    logo_url = EXCLUDED.logo_url,
    updated_at = NOW()
`+returningUpsert)
	if err != nil {
		return team.UpsertResult{}, fmt.Errorf("build insert team query: %w", err)
	}

	var ret upsertReturning
	if err := tx.GetContext(ctx, &ret, insertQuery, insertArgs...); err != nil {
		return team.UpsertResult{}, classifyWriteError(err, "insert team slug="+item.Slug)
	}
	if err := tx.Commit(); err != nil {
		return team.UpsertResult{}, fmt.Errorf("commit upsert team tx: %w", err)
	}

	return team.UpsertResult{ID: ret.ID, Inserted: ret.Inserted}, nil
}

func (r *TeamRepository) List(ctx context.Context, filter team.ListFilter) ([]team.Team, error) {
	builder := qb.Select("*").From("teams")
	if filter.Conference != "" {
		builder = builder.Where(qb.EqFold("conference", filter.Conference))
	}
	query, args, err := builder.OrderBy("name", "id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetBySlug(ctx context.Context, slug string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("slug", slug)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by slug query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by slug: %w", err)
	}

	return teamFromRow(row), true, nil
}
