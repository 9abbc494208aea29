package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
)

type teamTableModel struct {
	ID         int64          `db:"id"`
	Slug       string         `db:"slug"`
	Name       string         `db:"name"`
	ShortName  string         `db:"short_name"`
	Conference sql.NullString `db:"conference"`
	LogoURL    sql.NullString `db:"logo_url"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type teamInsertModel struct {
	Slug       string  `db:"slug"`
	Name       string  `db:"name"`
	ShortName  string  `db:"short_name"`
	Conference *string `db:"conference"`
	LogoURL    *string `db:"logo_url"`
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:         row.ID,
		Slug:       row.Slug,
		Name:       row.Name,
		ShortName:  row.ShortName,
		Conference: nullStringPtr(row.Conference),
		LogoURL:    nullStringPtr(row.LogoURL),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
