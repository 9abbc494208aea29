package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/domain/rawdata"
	"github.com/riskibarqy/b1g-analytics/internal/infrastructure/repository/memory"
	rawdatamock "github.com/riskibarqy/b1g-analytics/internal/mocks/domain/rawdata"
	"github.com/riskibarqy/b1g-analytics/internal/platform/cache"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
	"github.com/riskibarqy/b1g-analytics/internal/platform/resilience"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
	"github.com/stretchr/testify/mock"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		HTTPClient:   server.Client(),
		BaseURL:      server.URL,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func TestClient_NonSuccessReturnsTransportError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}, nil)

	_, err := client.FetchBoxscore(context.Background(), "401")
	if err == nil {
		t.Fatalf("expected error")
	}
	var transportErr *usecase.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error, got=%T %v", err, err)
	}
	if transportErr.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", transportErr.StatusCode)
	}
	if !strings.Contains(transportErr.URL, "/summary?event=401") {
		t.Fatalf("unexpected url: %s", transportErr.URL)
	}
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable in chain")
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"sports":[{"leagues":[{"teams":[]}]}]}`))
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 2
	})

	teams, err := client.FetchConferenceRoster(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 0 {
		t.Fatalf("expected empty roster, got=%d", len(teams))
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got=%d", got)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 3
	})

	if _, err := client.FetchBoxscore(context.Background(), "1"); err == nil {
		t.Fatalf("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got=%d", got)
	}
}

func TestClient_FetchConferenceRoster_DedupesByID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams" || r.URL.Query().Get("groups") != "7" || r.URL.Query().Get("limit") != "100" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"sports":[{"leagues":[{"teams":[
			{"team":{"id":"356","displayName":"Illinois Fighting Illini","abbreviation":"ILL","logos":[{"href":"https://espn.test/ill.png"}]}},
			{"team":{"id":"356","displayName":"Illinois Fighting Illini"}},
			{"team":{"displayName":"No Id"}},
			{"team":{"id":84,"displayName":"Indiana Hoosiers","shortDisplayName":"Indiana"}}
		]}]}]}`))
	}, nil)

	teams, err := client.FetchConferenceRoster(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got=%d", len(teams))
	}
	if teams[0].Slug != "illinois" || teams[0].ExternalID != "356" || teams[0].LogoURL != "https://espn.test/ill.png" {
		t.Fatalf("unexpected first team: %+v", teams[0])
	}
	if teams[1].Slug != "indiana" || teams[1].ExternalID != "84" || teams[1].ShortName != "Indiana" {
		t.Fatalf("unexpected second team: %+v", teams[1])
	}
}

func TestClient_FetchTeamSchedule_SwallowsFailedPartition(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams/130/schedule" || r.URL.Query().Get("season") != "2025" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		if r.URL.Query().Get("seasontype") == "3" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"events":[` + scheduleEventFixture + `, {"id": "bad"}]}`))
	}, nil)

	games, err := client.FetchTeamSchedule(context.Background(), "130", 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game from the regular season partition, got=%d", len(games))
	}
	if games[0].IsHome == nil || !*games[0].IsHome {
		t.Fatalf("expected requested team to be home")
	}
}

func TestClient_FetchTeamSchedule_AllPartitionsFailed(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 1 })

	games, err := client.FetchTeamSchedule(context.Background(), "130", 2025)
	if games != nil {
		t.Fatalf("expected no games, got=%d", len(games))
	}
	var transportErr *usecase.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error, got=%v", err)
	}
	if transportErr.StatusCode != http.StatusServiceUnavailable || !strings.Contains(transportErr.URL, "seasontype=2") {
		t.Fatalf("expected regular season failure, got status=%d url=%s", transportErr.StatusCode, transportErr.URL)
	}
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got=%v", err)
	}
	if got := calls.Load(); got != 4 {
		t.Fatalf("expected 2 attempts per partition, got=%d", got)
	}
}

func TestClient_ScheduleOutageBecomesOneTeamError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/teams":
			_, _ = w.Write([]byte(`{"sports":[{"leagues":[{"teams":[
				{"team":{"id":"130","displayName":"Michigan Wolverines"}},
				{"team":{"id":"2509","displayName":"Purdue Boilermakers"}}
			]}]}]}`))
		case r.URL.Path == "/teams/130/schedule":
			w.WriteHeader(http.StatusServiceUnavailable)
		case r.URL.Path == "/teams/2509/schedule" && r.URL.Query().Get("seasontype") == "2":
			_, _ = w.Write([]byte(`{"events":[` + scheduleEventFixture + `]}`))
		default:
			_, _ = w.Write([]byte(`{"events":[]}`))
		}
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 1 })

	games := memory.NewGameRepository()
	reconcile := usecase.NewReconciliationService(memory.NewTeamRepository(nil), games, memory.NewTeamStatRepository(), logging.NewNop())
	service := usecase.NewIngestService(client, reconcile, nil, logging.NewNop())

	summary, err := service.Run(context.Background(), usecase.IngestRequest{Season: 2025})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Team != "michigan" {
		t.Fatalf("expected one michigan error, got=%+v", summary.Errors)
	}
	if !strings.Contains(summary.Errors[0].Message, "503") {
		t.Fatalf("expected status in error message, got=%q", summary.Errors[0].Message)
	}
	if summary.TeamsProcessed != 2 || summary.GamesUpserted != 1 {
		t.Fatalf("expected purdue schedule to be stored, got=%+v", summary)
	}
	if _, exists, _ := games.GetByExternalID(context.Background(), "401706001"); !exists {
		t.Fatalf("expected purdue game to be stored")
	}
}

func TestClient_FetchTeamSchedule_MergesPartitions(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("seasontype") == "3" {
			postseason := strings.Replace(scheduleEventFixture, "2025-01-05T20:00Z", "2025-03-15T20:00Z", 1)
			_, _ = w.Write([]byte(`{"events":[` + postseason + `]}`))
			return
		}
		_, _ = w.Write([]byte(`{"events":[` + scheduleEventFixture + `]}`))
	}, nil)

	games, err := client.FetchTeamSchedule(context.Background(), "130", 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected merged single game, got=%d", len(games))
	}
	want := time.Date(2025, 3, 15, 20, 0, 0, 0, time.UTC).Unix()
	if games[0].Date == nil || *games[0].Date != want {
		t.Fatalf("expected later dated variant, got=%v", games[0].Date)
	}
}

func TestClient_FetchBoxscore_MalformedPayloadDoesNotPanic(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"header": [], "boxscore": {"teams": {"a": 1}}}`))
	}, nil)

	box, err := client.FetchBoxscore(context.Background(), "401")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box != nil {
		t.Fatalf("expected absent boxscore, got=%+v", box)
	}
}

func TestClient_InvalidJSONIsDecodeError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}, nil)

	_, err := client.FetchBoxscore(context.Background(), "401")
	if err == nil || !strings.Contains(err.Error(), "decode provider payload") {
		t.Fatalf("expected decode error, got=%v", err)
	}
}

func TestClient_FetchScoreboard(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dates") != "20250105" || r.URL.Query().Get("limit") != "300" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"events":[` + scheduleEventFixture + `]}`))
	}, nil)

	if _, err := client.FetchScoreboard(context.Background(), "2025-01-05"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input for malformed date, got=%v", err)
	}

	games, err := client.FetchScoreboard(context.Background(), "20250105")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 || games[0].IsHome != nil {
		t.Fatalf("unexpected scoreboard games: %+v", games)
	}
}

func TestClient_CachesScheduleResponses(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"sports":[{"leagues":[{"teams":[{"team":{"id":"1","displayName":"Iowa"}}]}]}]}`))
	}, func(cfg *ClientConfig) {
		cfg.Cache = NewStoreCache(cache.NewStore[[]byte](time.Minute))
		cfg.CacheTTL = time.Minute
	})

	for i := 0; i < 3; i++ {
		teams, err := client.FetchConferenceRoster(context.Background())
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(teams) != 1 {
			t.Fatalf("fetch %d: unexpected roster size %d", i, len(teams))
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single upstream call, got=%d", got)
	}
}

func TestClient_ArchivesRawPayloads(t *testing.T) {
	t.Parallel()

	archive := rawdatamock.NewRepository(t)
	archive.On("UpsertMany", mock.Anything, mock.MatchedBy(func(items []rawdata.Payload) bool {
		return len(items) == 1 &&
			items[0].Source == rawdata.SourceESPN &&
			items[0].EntityType == endpointSummary &&
			items[0].EntityKey == "/summary?event=401" &&
			items[0].PayloadHash == rawdata.Hash([]byte(`{}`))
	})).Return(errors.New("db down")).Once()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, func(cfg *ClientConfig) {
		cfg.Archive = archive
	})

	if _, err := client.FetchBoxscore(context.Background(), "401"); err != nil {
		t.Fatalf("archive failure must not fail the fetch: %v", err)
	}
}

func TestClient_CircuitBreakerRejectsAfterFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	if _, err := client.FetchBoxscore(context.Background(), "1"); err == nil {
		t.Fatalf("expected first call to fail")
	}
	_, err := client.FetchBoxscore(context.Background(), "2")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got=%v", err)
	}
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got=%v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected breaker to stop upstream calls, got=%d", got)
	}
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveProviderRequest(endpoint, outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, endpoint+":"+outcome)
}

func TestClient_ReportsRequestOutcomes(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("event") == "bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}, func(cfg *ClientConfig) {
		cfg.Observer = observer
	})

	_, _ = client.FetchBoxscore(context.Background(), "ok")
	_, _ = client.FetchBoxscore(context.Background(), "bad")

	want := []string{"summary:success", "summary:error"}
	if len(observer.outcomes) != len(want) {
		t.Fatalf("unexpected outcomes: %v", observer.outcomes)
	}
	for i := range want {
		if observer.outcomes[i] != want[i] {
			t.Fatalf("outcome %d: got=%s want=%s", i, observer.outcomes[i], want[i])
		}
	}
}
