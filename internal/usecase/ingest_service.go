package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/riskibarqy/b1g-analytics/internal/domain/roster"
	"github.com/riskibarqy/b1g-analytics/internal/domain/schedule"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
)

type IngestMode string

const (
	IngestModeAll  IngestMode = "all"
	IngestModeTeam IngestMode = "team"
)

const (
	ingestOutcomeSuccess = "success"
	ingestOutcomePartial = "partial"
	ingestOutcomeFailed  = "failed"

	IngestErrorScopeTeam  = "team"
	IngestErrorScopeEvent = "event"

	ingestDateLayout = "2006-01-02"
	secondsPerDay    = 24 * 60 * 60
)

var ingestDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IngestRequest is the caller-facing shape of an ingest run. Zero values
// take defaults.
type IngestRequest struct {
	Season          int    `json:"season,omitempty"`
	Team            string `json:"team,omitempty"`
	Mode            string `json:"mode,omitempty"`
	Since           string `json:"since,omitempty"`
	Until           string `json:"until,omitempty"`
	IncludeBoxscore bool   `json:"includeBoxscore,omitempty"`
}

// IngestPlan is a validated IngestRequest.
type IngestPlan struct {
	Season          int
	Mode            IngestMode
	Team            string
	IncludeBoxscore bool
	Window          schedule.Window
}

type IngestError struct {
	Team    string `json:"team,omitempty"`
	EventID string `json:"eventId,omitempty"`
	Message string `json:"message"`
}

type IngestSummary struct {
	RunID           string          `json:"runId"`
	Mode            IngestMode      `json:"mode"`
	Season          int             `json:"season"`
	IncludeBoxscore bool            `json:"includeBoxscore"`
	TeamsProcessed  int             `json:"teamsProcessed"`
	GamesUpserted   int             `json:"gamesUpserted"`
	StatsUpserted   int             `json:"statsUpserted"`
	Counts          ReconcileCounts `json:"counts"`
	Errors          []IngestError   `json:"errors"`
	DurationMs      int64           `json:"durationMs"`
}

// IngestObserver receives run level measurements.
type IngestObserver interface {
	ObserveIngestRun(mode, outcome string, elapsed time.Duration)
	AddTeamsProcessed(count int)
	AddGamesUpserted(inserted, updated int)
	AddStatsUpserted(inserted, updated int)
	AddIngestError(scope string)
}

type noopIngestObserver struct{}

func (noopIngestObserver) ObserveIngestRun(string, string, time.Duration) {}
func (noopIngestObserver) AddTeamsProcessed(int)                          {}
func (noopIngestObserver) AddGamesUpserted(int, int)                      {}
func (noopIngestObserver) AddStatsUpserted(int, int)                      {}
func (noopIngestObserver) AddIngestError(string)                          {}

// CurrentSeason returns the season year a date belongs to. Seasons are named
// after the calendar year they end in and roll over in July.
func CurrentSeason(now time.Time) int {
	now = now.UTC()
	if now.Month() >= time.July {
		return now.Year() + 1
	}
	return now.Year()
}

func NormalizeIngestRequest(req IngestRequest, now time.Time) (IngestPlan, error) {
	plan := IngestPlan{
		Season:          req.Season,
		Team:            strings.ToLower(strings.TrimSpace(req.Team)),
		IncludeBoxscore: req.IncludeBoxscore,
	}
	if plan.Season < 0 {
		return IngestPlan{}, fmt.Errorf("%w: season must be a positive year", ErrInvalidInput)
	}
	if plan.Season == 0 {
		plan.Season = CurrentSeason(now)
	}

	switch mode := IngestMode(strings.ToLower(strings.TrimSpace(req.Mode))); mode {
	case "":
		plan.Mode = IngestModeAll
		if plan.Team != "" {
			plan.Mode = IngestModeTeam
		}
	case IngestModeAll, IngestModeTeam:
		plan.Mode = mode
	default:
		return IngestPlan{}, fmt.Errorf("%w: mode must be 'all' or 'team', got %q", ErrInvalidInput, req.Mode)
	}

	since, err := parseIngestDate("since", req.Since)
	if err != nil {
		return IngestPlan{}, err
	}
	until, err := parseIngestDate("until", req.Until)
	if err != nil {
		return IngestPlan{}, err
	}
	if until != nil {
		end := *until + secondsPerDay - 1
		until = &end
	}
	if since != nil && until != nil && *since > *until {
		return IngestPlan{}, fmt.Errorf("%w: since must be less than or equal to until", ErrInvalidInput)
	}
	plan.Window = schedule.Window{Since: since, Until: until}

	if plan.Mode == IngestModeTeam && plan.Team == "" {
		return IngestPlan{}, fmt.Errorf("%w: team is required when mode is 'team'", ErrInvalidInput)
	}

	return plan, nil
}

func parseIngestDate(field, value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if !ingestDateRegex.MatchString(value) {
		return nil, fmt.Errorf("%w: %s must be formatted as YYYY-MM-DD", ErrInvalidInput, field)
	}
	parsed, err := time.Parse(ingestDateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid date", ErrInvalidInput, field)
	}
	epoch := parsed.UTC().Unix()
	return &epoch, nil
}

// IngestService runs one ingestion pass: roster, schedules, games and,
// optionally, box scores. All provider calls and writes are sequential.
type IngestService struct {
	provider  ScheduleProvider
	reconcile *ReconciliationService
	observer  IngestObserver
	logger    *logging.Logger
	now       func() time.Time
}

func NewIngestService(
	provider ScheduleProvider,
	reconcile *ReconciliationService,
	observer IngestObserver,
	logger *logging.Logger,
) *IngestService {
	if observer == nil {
		observer = noopIngestObserver{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &IngestService{
		provider:  provider,
		reconcile: reconcile,
		observer:  observer,
		logger:    logger,
		now:       time.Now,
	}
}

// Plan validates a request against the service clock.
func (s *IngestService) Plan(req IngestRequest) (IngestPlan, error) {
	return NormalizeIngestRequest(req, s.now())
}

func (s *IngestService) Run(ctx context.Context, req IngestRequest) (IngestSummary, error) {
	plan, err := s.Plan(req)
	if err != nil {
		return IngestSummary{}, err
	}
	return s.Execute(ctx, uuid.NewString(), plan)
}

// Execute runs a validated plan. Per-team and per-event failures are
// collected in the summary; only a roster failure, an unknown team or a
// cancelled context end the run with an error.
func (s *IngestService) Execute(ctx context.Context, runID string, plan IngestPlan) (IngestSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.Execute")
	defer span.End()

	started := s.now()
	logger := s.logger.With("run_id", runID)
	summary := IngestSummary{
		RunID:           runID,
		Mode:            plan.Mode,
		Season:          plan.Season,
		IncludeBoxscore: plan.IncludeBoxscore,
		Errors:          make([]IngestError, 0),
	}

	logger.InfoContext(ctx, "ingest run started",
		"mode", plan.Mode,
		"season", plan.Season,
		"team", plan.Team,
		"include_boxscore", plan.IncludeBoxscore,
	)

	summary, err := s.execute(ctx, logger, plan, summary)
	elapsed := s.now().Sub(started)
	summary.DurationMs = elapsed.Milliseconds()

	outcome := ingestOutcomeSuccess
	switch {
	case err != nil:
		outcome = ingestOutcomeFailed
	case len(summary.Errors) > 0:
		outcome = ingestOutcomePartial
	}
	s.observer.ObserveIngestRun(string(plan.Mode), outcome, elapsed)

	if err != nil {
		logger.WarnContext(ctx, "ingest run failed", "error", err, "duration_ms", summary.DurationMs)
		return summary, err
	}
	logger.InfoContext(ctx, "ingest run finished",
		"teams_processed", summary.TeamsProcessed,
		"games_upserted", summary.GamesUpserted,
		"stats_upserted", summary.StatsUpserted,
		"errors", len(summary.Errors),
		"duration_ms", summary.DurationMs,
	)
	return summary, nil
}

func (s *IngestService) execute(ctx context.Context, logger *logging.Logger, plan IngestPlan, summary IngestSummary) (IngestSummary, error) {
	conferenceTeams, err := s.provider.FetchConferenceRoster(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetch conference roster: %w", err)
	}

	selected := conferenceTeams
	if plan.Mode == IngestModeTeam {
		selected = make([]schedule.ConferenceTeam, 0, 1)
		for _, item := range conferenceTeams {
			if item.Slug == plan.Team {
				selected = append(selected, item)
			}
		}
		if len(selected) == 0 {
			return summary, fmt.Errorf("%w: no %s ESPN team found for slug %q", ErrInvalidInput, roster.Conference, plan.Team)
		}
	}

	processed := make(map[string]struct{})
	for _, conferenceTeam := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.TeamsProcessed++
		s.observer.AddTeamsProcessed(1)
		if err := s.ingestTeam(ctx, logger, plan, conferenceTeam, processed, &summary); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			logger.WarnContext(ctx, "ingest team failed", "team", conferenceTeam.Slug, "error", err)
			s.observer.AddIngestError(IngestErrorScopeTeam)
			summary.Errors = append(summary.Errors, IngestError{
				Team:    conferenceTeam.Slug,
				Message: err.Error(),
			})
		}
	}

	return summary, nil
}

func (s *IngestService) ingestTeam(
	ctx context.Context,
	logger *logging.Logger,
	plan IngestPlan,
	conferenceTeam schedule.ConferenceTeam,
	processed map[string]struct{},
	summary *IngestSummary,
) error {
	games, err := s.provider.FetchTeamSchedule(ctx, conferenceTeam.ExternalID, plan.Season)
	if err != nil {
		return fmt.Errorf("fetch schedule: %w", err)
	}
	games = plan.Window.Filter(games)

	lookup, teamCounts, err := s.reconcile.EnsureScheduleTeams(ctx, games)
	summary.Counts.Add(teamCounts)
	if err != nil {
		return err
	}

	for _, item := range games {
		if _, seen := processed[item.ExternalID]; seen {
			continue
		}
		processed[item.ExternalID] = struct{}{}

		result, err := s.reconcile.UpsertGame(ctx, item, lookup)
		if err != nil {
			return err
		}
		summary.GamesUpserted++
		if result.Inserted {
			summary.Counts.GamesInserted++
			s.observer.AddGamesUpserted(1, 0)
		} else {
			summary.Counts.GamesUpdated++
			s.observer.AddGamesUpserted(0, 1)
		}

		if !plan.IncludeBoxscore || !schedule.IsFinalStatus(item.Status) {
			continue
		}
		if err := s.ingestBoxscore(ctx, result.ID, item.ExternalID, lookup, summary); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.WarnContext(ctx, "ingest box score failed",
				"team", conferenceTeam.Slug,
				"event_id", item.ExternalID,
				"error", err,
			)
			s.observer.AddIngestError(IngestErrorScopeEvent)
			summary.Errors = append(summary.Errors, IngestError{
				Team:    conferenceTeam.Slug,
				EventID: item.ExternalID,
				Message: err.Error(),
			})
		}
	}

	return nil
}

func (s *IngestService) ingestBoxscore(ctx context.Context, gameID int64, eventID string, lookup TeamIDLookup, summary *IngestSummary) error {
	box, err := s.provider.FetchBoxscore(ctx, eventID)
	if err != nil {
		return err
	}
	if box == nil {
		return nil
	}

	counts, err := s.reconcile.UpsertTeamGameStats(ctx, gameID, lookup, *box)
	summary.StatsUpserted += counts.Total()
	summary.Counts.StatsInserted += counts.Inserted
	summary.Counts.StatsUpdated += counts.Updated
	s.observer.AddStatsUpserted(counts.Inserted, counts.Updated)
	return err
}
