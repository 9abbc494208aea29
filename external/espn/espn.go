package espn

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/riskibarqy/b1g-analytics/internal/domain/schedule"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
)

const (
	endpointTeams      = "teams"
	endpointSchedule   = "team_schedule"
	endpointSummary    = "summary"
	endpointScoreboard = "scoreboard"

	seasonTypeRegular    = 2
	seasonTypePostseason = 3
)

var scoreboardDateRegex = regexp.MustCompile(`^\d{8}$`)

// FetchConferenceRoster lists the conference's teams, deduplicated by
// provider id.
func (c *Client) FetchConferenceRoster(ctx context.Context) ([]schedule.ConferenceTeam, error) {
	query := url.Values{}
	query.Set("groups", strconv.Itoa(c.conferenceGroup))
	query.Set("limit", "100")

	payload, err := c.doJSON(ctx, request{endpoint: endpointTeams, path: "/teams", query: query, cacheable: true})
	if err != nil {
		return nil, fmt.Errorf("fetch conference roster group=%d: %w", c.conferenceGroup, err)
	}

	league := firstMap(firstMap(payload, "sports"), "leagues")
	entries := getMaps(league, "teams")
	out := make([]schedule.ConferenceTeam, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		item, ok := parseConferenceTeam(getMap(entry, "team"))
		if !ok {
			continue
		}
		if _, exists := seen[item.ExternalID]; exists {
			continue
		}
		seen[item.ExternalID] = struct{}{}
		out = append(out, item)
	}

	return out, nil
}

// FetchTeamSchedule merges the regular season and postseason schedules of a
// team. A single failed partition is logged and contributes no games. When
// every partition fails the regular season error is returned.
func (c *Client) FetchTeamSchedule(ctx context.Context, externalTeamID string, season int) ([]schedule.Game, error) {
	externalTeamID = strings.TrimSpace(externalTeamID)
	if externalTeamID == "" {
		return nil, fmt.Errorf("%w: team id is required", usecase.ErrInvalidInput)
	}

	seasonTypes := []int{seasonTypeRegular, seasonTypePostseason}
	partitions := make([][]schedule.Game, 0, len(seasonTypes))
	var firstErr error
	for _, seasonType := range seasonTypes {
		games, err := c.fetchSchedulePartition(ctx, externalTeamID, season, seasonType)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if firstErr == nil {
				firstErr = err
			}
			c.logger.WarnContext(ctx, "fetch schedule partition failed",
				"team_id", externalTeamID,
				"season", season,
				"season_type", seasonType,
				"error", err,
			)
			continue
		}
		partitions = append(partitions, games)
	}

	if len(partitions) == 0 {
		return nil, fmt.Errorf("fetch schedule team=%s season=%d: %w", externalTeamID, season, firstErr)
	}
	return schedule.Merge(partitions...), nil
}

func (c *Client) fetchSchedulePartition(ctx context.Context, externalTeamID string, season, seasonType int) ([]schedule.Game, error) {
	query := url.Values{}
	query.Set("season", strconv.Itoa(season))
	query.Set("seasontype", strconv.Itoa(seasonType))

	payload, err := c.doJSON(ctx, request{
		endpoint:  endpointSchedule,
		path:      "/teams/" + url.PathEscape(externalTeamID) + "/schedule",
		query:     query,
		cacheable: true,
	})
	if err != nil {
		return nil, err
	}

	events := getMaps(payload, "events")
	out := make([]schedule.Game, 0, len(events))
	for _, event := range events {
		if item := parseScheduleEvent(event, externalTeamID); item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

// FetchBoxscore returns nil without error when the provider has no box score
// for the event.
func (c *Client) FetchBoxscore(ctx context.Context, externalGameID string) (*schedule.Boxscore, error) {
	externalGameID = strings.TrimSpace(externalGameID)
	if externalGameID == "" {
		return nil, fmt.Errorf("%w: event id is required", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("event", externalGameID)
	payload, err := c.doJSON(ctx, request{endpoint: endpointSummary, path: "/summary", query: query})
	if err != nil {
		return nil, fmt.Errorf("fetch boxscore event=%s: %w", externalGameID, err)
	}

	return parseBoxscore(externalGameID, payload), nil
}

// FetchScoreboard lists every game on a day formatted as YYYYMMDD.
func (c *Client) FetchScoreboard(ctx context.Context, day string) ([]schedule.Game, error) {
	day = strings.TrimSpace(day)
	if !scoreboardDateRegex.MatchString(day) {
		return nil, fmt.Errorf("%w: scoreboard date must be YYYYMMDD, got %q", usecase.ErrInvalidInput, day)
	}

	query := url.Values{}
	query.Set("dates", day)
	query.Set("limit", "300")
	payload, err := c.doJSON(ctx, request{endpoint: endpointScoreboard, path: "/scoreboard", query: query})
	if err != nil {
		return nil, fmt.Errorf("fetch scoreboard date=%s: %w", day, err)
	}

	events := getMaps(payload, "events")
	out := make([]schedule.Game, 0, len(events))
	for _, event := range events {
		if item := parseScheduleEvent(event, ""); item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}
