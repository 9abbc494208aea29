package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
)

type teamStatTableModel struct {
	ID             int64           `db:"id"`
	GameID         int64           `db:"game_id"`
	TeamID         int64           `db:"team_id"`
	OppTeamID      sql.NullInt64   `db:"opp_team_id"`
	IsHome         sql.NullBool    `db:"is_home"`
	Points         sql.NullInt64   `db:"points"`
	FGM            sql.NullInt64   `db:"fgm"`
	FGA            sql.NullInt64   `db:"fga"`
	FG3M           sql.NullInt64   `db:"fg3m"`
	FG3A           sql.NullInt64   `db:"fg3a"`
	FTM            sql.NullInt64   `db:"ftm"`
	FTA            sql.NullInt64   `db:"fta"`
	OREB           sql.NullInt64   `db:"oreb"`
	DREB           sql.NullInt64   `db:"dreb"`
	REB            sql.NullInt64   `db:"reb"`
	AST            sql.NullInt64   `db:"ast"`
	STL            sql.NullInt64   `db:"stl"`
	BLK            sql.NullInt64   `db:"blk"`
	TOV            sql.NullInt64   `db:"tov"`
	PF             sql.NullInt64   `db:"pf"`
	PossessionsEst sql.NullFloat64 `db:"possessions_est"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type teamStatInsertModel struct {
	GameID         int64    `db:"game_id"`
	TeamID         int64    `db:"team_id"`
	OppTeamID      *int64   `db:"opp_team_id"`
	IsHome         *bool    `db:"is_home"`
	Points         *int     `db:"points"`
	FGM            *int     `db:"fgm"`
	FGA            *int     `db:"fga"`
	FG3M           *int     `db:"fg3m"`
	FG3A           *int     `db:"fg3a"`
	FTM            *int     `db:"ftm"`
	FTA            *int     `db:"fta"`
	OREB           *int     `db:"oreb"`
	DREB           *int     `db:"dreb"`
	REB            *int     `db:"reb"`
	AST            *int     `db:"ast"`
	STL            *int     `db:"stl"`
	BLK            *int     `db:"blk"`
	TOV            *int     `db:"tov"`
	PF             *int     `db:"pf"`
	PossessionsEst *float64 `db:"possessions_est"`
}

func teamStatInsertFromDomain(item teamstat.Stat) teamStatInsertModel {
	line := item.Line
	return teamStatInsertModel{
		GameID:         item.GameID,
		TeamID:         item.TeamID,
		OppTeamID:      item.OppTeamID,
		IsHome:         item.IsHome,
		Points:         line.Points,
		FGM:            line.FGM,
		FGA:            line.FGA,
		FG3M:           line.FG3M,
		FG3A:           line.FG3A,
		FTM:            line.FTM,
		FTA:            line.FTA,
		OREB:           line.OREB,
		DREB:           line.DREB,
		REB:            line.REB,
		AST:            line.AST,
		STL:            line.STL,
		BLK:            line.BLK,
		TOV:            line.TOV,
		PF:             line.PF,
		PossessionsEst: item.PossessionsEst,
	}
}

func teamStatFromRow(row teamStatTableModel) teamstat.Stat {
	return teamstat.Stat{
		ID:        row.ID,
		GameID:    row.GameID,
		TeamID:    row.TeamID,
		OppTeamID: nullInt64Ptr(row.OppTeamID),
		IsHome:    nullBoolPtr(row.IsHome),
		Line: teamstat.Line{
			Points: nullIntPtr(row.Points),
			FGM:    nullIntPtr(row.FGM),
			FGA:    nullIntPtr(row.FGA),
			FG3M:   nullIntPtr(row.FG3M),
			FG3A:   nullIntPtr(row.FG3A),
			FTM:    nullIntPtr(row.FTM),
			FTA:    nullIntPtr(row.FTA),
			OREB:   nullIntPtr(row.OREB),
			DREB:   nullIntPtr(row.DREB),
			REB:    nullIntPtr(row.REB),
			AST:    nullIntPtr(row.AST),
			STL:    nullIntPtr(row.STL),
			BLK:    nullIntPtr(row.BLK),
			TOV:    nullIntPtr(row.TOV),
			PF:     nullIntPtr(row.PF),
		},
		PossessionsEst: nullFloatPtr(row.PossessionsEst),
	}
}
