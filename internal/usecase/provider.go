package usecase

import (
	"context"

	"github.com/riskibarqy/b1g-analytics/internal/domain/schedule"
)

// ScheduleProvider is the remote source of rosters, schedules and box scores.
type ScheduleProvider interface {
	FetchConferenceRoster(ctx context.Context) ([]schedule.ConferenceTeam, error)
	FetchTeamSchedule(ctx context.Context, externalTeamID string, season int) ([]schedule.Game, error)
	// FetchBoxscore returns nil without error when the event has no box score.
	FetchBoxscore(ctx context.Context, externalGameID string) (*schedule.Boxscore, error)
}
