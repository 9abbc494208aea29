package memory

import (
	"github.com/riskibarqy/b1g-analytics/internal/domain/roster"
	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
)

// SeedTeams returns the known conference roster as storable teams.
func SeedTeams() []team.Team {
	known := roster.Teams()
	out := make([]team.Team, 0, len(known))
	for _, item := range known {
		conference := roster.Conference
		out = append(out, team.Team{
			Slug:       item.Slug,
			Name:       item.Name,
			ShortName:  item.ShortName,
			Conference: &conference,
		})
	}
	return out
}
