package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/domain/game"
)

type gameTableModel struct {
	ID          int64          `db:"id"`
	ExternalID  string         `db:"external_id"`
	Season      sql.NullInt64  `db:"season"`
	Date        sql.NullInt64  `db:"date"`
	Status      string         `db:"status"`
	NeutralSite sql.NullBool   `db:"neutral_site"`
	HomeTeamID  int64          `db:"home_team_id"`
	AwayTeamID  int64          `db:"away_team_id"`
	HomeScore   sql.NullInt64  `db:"home_score"`
	AwayScore   sql.NullInt64  `db:"away_score"`
	Venue       sql.NullString `db:"venue"`
	RecapURL    sql.NullString `db:"recap_url"`
	BoxscoreURL sql.NullString `db:"boxscore_url"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type gameInsertModel struct {
	ExternalID  string  `db:"external_id"`
	Season      *int    `db:"season"`
	Date        *int64  `db:"date"`
	Status      string  `db:"status"`
	NeutralSite *bool   `db:"neutral_site"`
	HomeTeamID  int64   `db:"home_team_id"`
	AwayTeamID  int64   `db:"away_team_id"`
	HomeScore   *int    `db:"home_score"`
	AwayScore   *int    `db:"away_score"`
	Venue       *string `db:"venue"`
	RecapURL    *string `db:"recap_url"`
	BoxscoreURL *string `db:"boxscore_url"`
}

func gameFromRow(row gameTableModel) game.Game {
	return game.Game{
		ID:          row.ID,
		ExternalID:  row.ExternalID,
		Season:      nullIntPtr(row.Season),
		Date:        nullInt64Ptr(row.Date),
		Status:      row.Status,
		NeutralSite: nullBoolPtr(row.NeutralSite),
		HomeTeamID:  row.HomeTeamID,
		AwayTeamID:  row.AwayTeamID,
		HomeScore:   nullIntPtr(row.HomeScore),
		AwayScore:   nullIntPtr(row.AwayScore),
		Venue:       nullStringPtr(row.Venue),
		RecapURL:    nullStringPtr(row.RecapURL),
		BoxscoreURL: nullStringPtr(row.BoxscoreURL),
		UpdatedAt:   row.UpdatedAt,
	}
}
