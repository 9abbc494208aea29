package teamstat

import "math"

// Line is one team's box-score statistics for a single game. Nil fields
// were not reported by the provider.
type Line struct {
	Points      *int
	FGM         *int
	FGA         *int
	FG3M        *int
	FG3A        *int
	FTM         *int
	FTA         *int
	OREB        *int
	DREB        *int
	REB         *int
	AST         *int
	STL         *int
	BLK         *int
	TOV         *int
	PF          *int
	Possessions *float64
}

// Stat is the persisted per-team-per-game row.
type Stat struct {
	ID             int64
	GameID         int64
	TeamID         int64
	OppTeamID      *int64
	IsHome         *bool
	Line           Line
	PossessionsEst *float64
}

// UpsertResult reports what a single stat upsert did to storage.
type UpsertResult struct {
	ID       int64
	Inserted bool
}

// UpsertCounts aggregates stat upserts for one box score.
type UpsertCounts struct {
	Inserted int
	Updated  int
}

func (c UpsertCounts) Total() int {
	return c.Inserted + c.Updated
}

const freeThrowWeight = 0.44

// EstimatePossessions averages both teams' possession counts using
// FGA + 0.44*FTA - OREB + TOV. Missing inputs count as zero.
func EstimatePossessions(team, opponent Line) *float64 {
	teamSide := float64(intValue(team.FGA)) + freeThrowWeight*float64(intValue(team.FTA)) - float64(intValue(team.OREB)) + float64(intValue(opponent.TOV))
	oppSide := float64(intValue(opponent.FGA)) + freeThrowWeight*float64(intValue(opponent.FTA)) - float64(intValue(opponent.OREB)) + float64(intValue(team.TOV))

	value := 0.5 * (teamSide + oppSide)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

func intValue(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
