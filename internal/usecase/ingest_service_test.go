package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/domain/schedule"
	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
	"github.com/riskibarqy/b1g-analytics/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
)

type stubScheduleProvider struct {
	mu            sync.Mutex
	roster        []schedule.ConferenceTeam
	rosterErr     error
	schedules     map[string][]schedule.Game
	scheduleErrs  map[string]error
	boxscores     map[string]*schedule.Boxscore
	boxscoreErrs  map[string]error
	boxscoreCalls []string
}

func (p *stubScheduleProvider) FetchConferenceRoster(context.Context) ([]schedule.ConferenceTeam, error) {
	if p.rosterErr != nil {
		return nil, p.rosterErr
	}
	return append([]schedule.ConferenceTeam(nil), p.roster...), nil
}

func (p *stubScheduleProvider) FetchTeamSchedule(_ context.Context, externalTeamID string, _ int) ([]schedule.Game, error) {
	if err := p.scheduleErrs[externalTeamID]; err != nil {
		return nil, err
	}
	return append([]schedule.Game(nil), p.schedules[externalTeamID]...), nil
}

func (p *stubScheduleProvider) FetchBoxscore(_ context.Context, externalGameID string) (*schedule.Boxscore, error) {
	p.mu.Lock()
	p.boxscoreCalls = append(p.boxscoreCalls, externalGameID)
	p.mu.Unlock()

	if err := p.boxscoreErrs[externalGameID]; err != nil {
		return nil, err
	}
	return p.boxscores[externalGameID], nil
}

func (p *stubScheduleProvider) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.boxscoreCalls...)
}

func epoch(value string) *int64 {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	out := parsed.Unix()
	return &out
}

func ref(slug string, score int) schedule.TeamRef {
	return schedule.TeamRef{Slug: slug, Name: slug, ShortName: slug, Score: intPtr(score)}
}

func matchup(id, date, status string, home, away schedule.TeamRef) schedule.Game {
	game := schedule.Game{ExternalID: id, Status: status, HomeTeam: home, AwayTeam: away, Season: intPtr(2025)}
	if date != "" {
		game.Date = epoch(date)
	}
	return game
}

func boxscoreFor(id string, home, away schedule.TeamRef) *schedule.Boxscore {
	isHome, isAway := true, false
	return &schedule.Boxscore{
		ExternalID: id,
		Teams: []schedule.BoxscoreTeam{
			{Team: home, IsHome: &isHome, Stats: teamstat.Line{FGA: intPtr(60), FTA: intPtr(20), OREB: intPtr(9), TOV: intPtr(11)}},
			{Team: away, IsHome: &isAway, Stats: teamstat.Line{FGA: intPtr(58), FTA: intPtr(15), OREB: intPtr(12), TOV: intPtr(13)}},
		},
	}
}

// newConferenceFixture returns two teams whose schedules share game G1.
func newConferenceFixture() *stubScheduleProvider {
	michigan, purdue := ref("michigan", 80), ref("purdue", 74)
	duke := schedule.TeamRef{Name: "Duke Blue Devils", Score: intPtr(60)}
	iowa := schedule.TeamRef{Slug: "iowa", Name: "Iowa"}

	g1 := matchup("G1", "2025-01-05T20:00:00Z", "Final", michigan, purdue)
	g2 := matchup("G2", "2024-12-01T20:00:00Z", "Final/OT", michigan, duke)
	g3 := matchup("G3", "2025-02-10T20:00:00Z", "Scheduled", purdue, iowa)

	return &stubScheduleProvider{
		roster: []schedule.ConferenceTeam{
			{ExternalID: "130", Slug: "michigan", Name: "Michigan"},
			{ExternalID: "2509", Slug: "purdue", Name: "Purdue"},
		},
		schedules: map[string][]schedule.Game{
			"130":  {g2, g1},
			"2509": {g1, g3},
		},
		boxscores: map[string]*schedule.Boxscore{
			"G1": boxscoreFor("G1", michigan, purdue),
			"G2": boxscoreFor("G2", michigan, duke),
		},
	}
}

type ingestFixture struct {
	service *IngestService
	games   *memory.GameRepository
	stats   *memory.TeamStatRepository
	teams   *memory.TeamRepository
}

func newIngestFixture(provider ScheduleProvider, observer IngestObserver) ingestFixture {
	teams := memory.NewTeamRepository(nil)
	games := memory.NewGameRepository()
	stats := memory.NewTeamStatRepository()
	reconcile := NewReconciliationService(teams, games, stats, logging.NewNop())
	service := NewIngestService(provider, reconcile, observer, logging.NewNop())
	service.now = func() time.Time { return time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC) }
	return ingestFixture{service: service, games: games, stats: stats, teams: teams}
}

func TestCurrentSeason(t *testing.T) {
	t.Parallel()

	cases := []struct {
		now  time.Time
		want int
	}{
		{now: time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC), want: 2024},
		{now: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), want: 2025},
		{now: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), want: 2025},
		// 2024-07-01 02:00 in UTC+5 is still June 30 in UTC
		{now: time.Date(2024, 7, 1, 2, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)), want: 2024},
	}
	for _, tc := range cases {
		if got := CurrentSeason(tc.now); got != tc.want {
			t.Fatalf("CurrentSeason(%s): got=%d want=%d", tc.now, got, tc.want)
		}
	}
}

func TestNormalizeIngestRequest_Defaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)

	plan, err := NormalizeIngestRequest(IngestRequest{}, now)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if plan.Mode != IngestModeAll || plan.Season != 2025 || plan.Window.Bounded() || plan.IncludeBoxscore {
		t.Fatalf("unexpected defaults: %+v", plan)
	}

	plan, err = NormalizeIngestRequest(IngestRequest{Team: "  Ohio-State ", Season: 2023, IncludeBoxscore: true}, now)
	if err != nil {
		t.Fatalf("normalize with team: %v", err)
	}
	if plan.Mode != IngestModeTeam || plan.Team != "ohio-state" || plan.Season != 2023 || !plan.IncludeBoxscore {
		t.Fatalf("unexpected team plan: %+v", plan)
	}
}

func TestNormalizeIngestRequest_WindowBounds(t *testing.T) {
	t.Parallel()

	plan, err := NormalizeIngestRequest(IngestRequest{Since: "2024-01-01", Until: "2024-01-31"}, time.Now())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if plan.Window.Since == nil || *plan.Window.Since != *epoch("2024-01-01T00:00:00Z") {
		t.Fatalf("unexpected since: %v", plan.Window.Since)
	}
	if plan.Window.Until == nil || *plan.Window.Until != *epoch("2024-01-31T23:59:59Z") {
		t.Fatalf("unexpected until: %v", plan.Window.Until)
	}
	if !plan.Window.Contains(epoch("2024-01-31T23:59:59Z")) {
		t.Fatalf("expected last second of until to be included")
	}
	if plan.Window.Contains(epoch("2024-02-01T00:00:00Z")) {
		t.Fatalf("expected day after until to be excluded")
	}

	sameDay, err := NormalizeIngestRequest(IngestRequest{Since: "2024-03-03", Until: "2024-03-03"}, time.Now())
	if err != nil {
		t.Fatalf("same day window must be valid: %v", err)
	}
	if *sameDay.Window.Until-*sameDay.Window.Since != secondsPerDay-1 {
		t.Fatalf("unexpected same day window: %+v", sameDay.Window)
	}
}

func TestNormalizeIngestRequest_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]IngestRequest{
		"unknown mode":         {Mode: "conference"},
		"team mode no team":    {Mode: "team"},
		"since after until":    {Since: "2024-02-01", Until: "2024-01-31"},
		"short since":          {Since: "2024-1-01"},
		"timestamp until":      {Until: "2024-01-01T00:00:00Z"},
		"impossible date":      {Since: "2024-02-30"},
		"negative season":      {Season: -1},
		"blank team with mode": {Mode: "team", Team: "   "},
	}
	for name, req := range cases {
		if _, err := NormalizeIngestRequest(req, time.Now()); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got=%v", name, err)
		}
	}
}

func TestIngestService_RunIsIdempotentAndDedupesAcrossTeams(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixture := newIngestFixture(newConferenceFixture(), nil)
	req := IngestRequest{Season: 2025, IncludeBoxscore: true}

	first, err := fixture.service.Run(ctx, req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", first.Errors)
	}
	if first.TeamsProcessed != 2 || first.GamesUpserted != 3 || first.StatsUpserted != 4 {
		t.Fatalf("unexpected first totals: %+v", first)
	}
	wantFirst := ReconcileCounts{TeamsInserted: 4, TeamsUpdated: 2, GamesInserted: 3, StatsInserted: 4}
	if first.Counts != wantFirst {
		t.Fatalf("unexpected first counts: got=%+v want=%+v", first.Counts, wantFirst)
	}
	if first.RunID == "" || first.Mode != IngestModeAll || first.Season != 2025 || !first.IncludeBoxscore {
		t.Fatalf("unexpected summary header: %+v", first)
	}

	second, err := fixture.service.Run(ctx, req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	wantSecond := ReconcileCounts{TeamsUpdated: 6, GamesUpdated: 3, StatsUpdated: 4}
	if second.Counts != wantSecond {
		t.Fatalf("unexpected second counts: got=%+v want=%+v", second.Counts, wantSecond)
	}
	if second.RunID == first.RunID {
		t.Fatalf("expected a fresh run id")
	}

	if got := fixture.games.Len(); got != 3 {
		t.Fatalf("expected 3 stored games, got=%d", got)
	}
	if got := fixture.stats.Len(); got != 4 {
		t.Fatalf("expected 4 stored stat rows, got=%d", got)
	}

	stored, exists, err := fixture.games.GetByExternalID(ctx, "G2")
	if err != nil || !exists {
		t.Fatalf("get G2: exists=%v err=%v", exists, err)
	}
	duke, exists, err := fixture.teams.GetBySlug(ctx, "duke-blue-devils")
	if err != nil || !exists {
		t.Fatalf("get duke: exists=%v err=%v", exists, err)
	}
	if stored.AwayTeamID != duke.ID || duke.Conference != nil {
		t.Fatalf("unexpected non-conference opponent: game=%+v team=%+v", stored, duke)
	}
}

func TestIngestService_RunOnlyFetchesFinalBoxscores(t *testing.T) {
	t.Parallel()

	provider := newConferenceFixture()
	fixture := newIngestFixture(provider, nil)

	if _, err := fixture.service.Run(context.Background(), IngestRequest{Season: 2025}); err != nil {
		t.Fatalf("run without box scores: %v", err)
	}
	if calls := provider.calls(); len(calls) != 0 {
		t.Fatalf("expected no box score fetches, got=%v", calls)
	}

	if _, err := fixture.service.Run(context.Background(), IngestRequest{Season: 2025, IncludeBoxscore: true}); err != nil {
		t.Fatalf("run with box scores: %v", err)
	}
	calls := provider.calls()
	if len(calls) != 2 || calls[0] != "G2" || calls[1] != "G1" {
		t.Fatalf("expected final games only in schedule order, got=%v", calls)
	}
}

func TestIngestService_TeamFailureIsIsolated(t *testing.T) {
	t.Parallel()

	provider := newConferenceFixture()
	provider.scheduleErrs = map[string]error{
		"130": &TransportError{StatusCode: 503, URL: "https://espn.test/teams/130/schedule"},
	}
	fixture := newIngestFixture(provider, nil)

	summary, err := fixture.service.Run(context.Background(), IngestRequest{Season: 2025})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("expected exactly one error, got=%+v", summary.Errors)
	}
	if summary.Errors[0].Team != "michigan" || summary.Errors[0].EventID != "" {
		t.Fatalf("unexpected error entry: %+v", summary.Errors[0])
	}
	if summary.TeamsProcessed != 2 || summary.GamesUpserted != 2 {
		t.Fatalf("expected purdue games to be stored, got=%+v", summary)
	}
	if _, exists, _ := fixture.games.GetByExternalID(context.Background(), "G3"); !exists {
		t.Fatalf("expected G3 to be stored")
	}
}

func TestIngestService_DataIntegrityAbortsOnlyThatTeam(t *testing.T) {
	t.Parallel()

	provider := newConferenceFixture()
	provider.schedules["130"] = []schedule.Game{
		matchup("BAD", "2025-01-01T00:00:00Z", "Final", ref("michigan", 1), ref("michigan", 2)),
		matchup("G2", "2025-01-02T00:00:00Z", "Final", ref("michigan", 1), ref("purdue", 2)),
	}
	fixture := newIngestFixture(provider, nil)

	summary, err := fixture.service.Run(context.Background(), IngestRequest{Season: 2025})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Team != "michigan" {
		t.Fatalf("expected one michigan error, got=%+v", summary.Errors)
	}
	if _, exists, _ := fixture.games.GetByExternalID(context.Background(), "G2"); exists {
		t.Fatalf("expected remaining michigan games to be skipped")
	}
	if _, exists, _ := fixture.games.GetByExternalID(context.Background(), "G3"); !exists {
		t.Fatalf("expected purdue games to be stored")
	}
}

func TestIngestService_BoxscoreFailureIsIsolated(t *testing.T) {
	t.Parallel()

	provider := newConferenceFixture()
	provider.boxscoreErrs = map[string]error{"G2": &TransportError{StatusCode: 500, URL: "https://espn.test/summary?event=G2"}}
	fixture := newIngestFixture(provider, nil)

	summary, err := fixture.service.Run(context.Background(), IngestRequest{Season: 2025, IncludeBoxscore: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("expected one error, got=%+v", summary.Errors)
	}
	if summary.Errors[0].Team != "michigan" || summary.Errors[0].EventID != "G2" {
		t.Fatalf("unexpected error entry: %+v", summary.Errors[0])
	}
	if summary.StatsUpserted != 2 || fixture.stats.Len() != 2 {
		t.Fatalf("expected G1 stats to be stored, got summary=%d rows=%d", summary.StatsUpserted, fixture.stats.Len())
	}
	if summary.GamesUpserted != 3 {
		t.Fatalf("expected all games to be stored, got=%d", summary.GamesUpserted)
	}
}

func TestIngestService_WindowFiltersGames(t *testing.T) {
	t.Parallel()

	provider := newConferenceFixture()
	michigan, purdue := ref("michigan", 1), ref("purdue", 2)
	provider.schedules["130"] = []schedule.Game{
		matchup("IN", "2024-01-31T23:59:59Z", "Final", michigan, purdue),
		matchup("OUT", "2024-02-01T00:00:00Z", "Final", michigan, purdue),
		matchup("UNDATED", "", "Scheduled", michigan, purdue),
	}
	provider.schedules["2509"] = nil
	fixture := newIngestFixture(provider, nil)

	summary, err := fixture.service.Run(context.Background(), IngestRequest{Season: 2024, Since: "2024-01-01", Until: "2024-01-31"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.GamesUpserted != 1 {
		t.Fatalf("expected one game in window, got=%d", summary.GamesUpserted)
	}
	if _, exists, _ := fixture.games.GetByExternalID(context.Background(), "IN"); !exists {
		t.Fatalf("expected IN to be stored")
	}

	unbounded, err := fixture.service.Run(context.Background(), IngestRequest{Season: 2024})
	if err != nil {
		t.Fatalf("unbounded run: %v", err)
	}
	if unbounded.GamesUpserted != 3 {
		t.Fatalf("expected undated game without window, got=%d", unbounded.GamesUpserted)
	}
}

func TestIngestService_TeamMode(t *testing.T) {
	t.Parallel()

	provider := newConferenceFixture()
	fixture := newIngestFixture(provider, nil)

	summary, err := fixture.service.Run(context.Background(), IngestRequest{Season: 2025, Team: "Purdue"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Mode != IngestModeTeam || summary.TeamsProcessed != 1 || summary.GamesUpserted != 2 {
		t.Fatalf("unexpected team mode summary: %+v", summary)
	}

	_, err = fixture.service.Run(context.Background(), IngestRequest{Season: 2025, Team: "gonzaga"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown team, got=%v", err)
	}
}

func TestIngestService_RosterFailureIsFatal(t *testing.T) {
	t.Parallel()

	provider := newConferenceFixture()
	provider.rosterErr = &TransportError{StatusCode: 502, URL: "https://espn.test/teams"}
	fixture := newIngestFixture(provider, nil)

	_, err := fixture.service.Run(context.Background(), IngestRequest{})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got=%v", err)
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) || transportErr.StatusCode != 502 {
		t.Fatalf("expected wrapped transport error, got=%v", err)
	}
	if fixture.games.Len() != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestIngestService_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	fixture := newIngestFixture(newConferenceFixture(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fixture.service.Run(ctx, IngestRequest{Season: 2025})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancelled, got=%v", err)
	}
}

type recordingIngestObserver struct {
	mu            sync.Mutex
	outcomes      []string
	teams         int
	gamesInserted int
	statsInserted int
	errorScopes   []string
}

func (r *recordingIngestObserver) ObserveIngestRun(mode, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, mode+":"+outcome)
}

func (r *recordingIngestObserver) AddTeamsProcessed(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams += count
}

func (r *recordingIngestObserver) AddGamesUpserted(inserted, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gamesInserted += inserted
}

func (r *recordingIngestObserver) AddStatsUpserted(inserted, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statsInserted += inserted
}

func (r *recordingIngestObserver) AddIngestError(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorScopes = append(r.errorScopes, scope)
}

func TestIngestService_ReportsToObserver(t *testing.T) {
	t.Parallel()

	provider := newConferenceFixture()
	provider.boxscoreErrs = map[string]error{"G1": errors.New("summary unavailable")}
	observer := &recordingIngestObserver{}
	fixture := newIngestFixture(provider, observer)

	if _, err := fixture.service.Run(context.Background(), IngestRequest{Season: 2025, IncludeBoxscore: true}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(observer.outcomes) != 1 || observer.outcomes[0] != "all:partial" {
		t.Fatalf("unexpected outcomes: %v", observer.outcomes)
	}
	if observer.teams != 2 || observer.gamesInserted != 3 || observer.statsInserted != 2 {
		t.Fatalf("unexpected tallies: teams=%d games=%d stats=%d", observer.teams, observer.gamesInserted, observer.statsInserted)
	}
	if len(observer.errorScopes) != 1 || observer.errorScopes[0] != IngestErrorScopeEvent {
		t.Fatalf("unexpected error scopes: %v", observer.errorScopes)
	}
}
