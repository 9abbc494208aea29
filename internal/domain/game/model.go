package game

import (
	"fmt"
	"time"
)

// Game is a single scheduled or played contest between two teams.
type Game struct {
	ID          int64
	ExternalID  string
	Season      *int
	Date        *int64
	Status      string
	NeutralSite *bool
	HomeTeamID  int64
	AwayTeamID  int64
	HomeScore   *int
	AwayScore   *int
	Venue       *string
	RecapURL    *string
	BoxscoreURL *string
	UpdatedAt   time.Time
}

func (g Game) Validate() error {
	if g.ExternalID == "" {
		return fmt.Errorf("game external id is required")
	}
	if g.HomeTeamID <= 0 || g.AwayTeamID <= 0 {
		return fmt.Errorf("game %s requires both team ids", g.ExternalID)
	}
	if g.HomeTeamID == g.AwayTeamID {
		return fmt.Errorf("game %s home and away team must differ", g.ExternalID)
	}

	return nil
}

type UpsertResult struct {
	ID       int64
	Inserted bool
}

// ListFilter narrows game listings for a team. Zero values match everything.
type ListFilter struct {
	TeamID int64
	Season int
	Limit  int
}
