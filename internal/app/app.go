package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/b1g-analytics/external/espn"
	"github.com/riskibarqy/b1g-analytics/internal/config"
	"github.com/riskibarqy/b1g-analytics/internal/domain/game"
	"github.com/riskibarqy/b1g-analytics/internal/domain/rawdata"
	"github.com/riskibarqy/b1g-analytics/internal/domain/team"
	"github.com/riskibarqy/b1g-analytics/internal/domain/teamstat"
	rediscache "github.com/riskibarqy/b1g-analytics/internal/infrastructure/cache"
	cacherepo "github.com/riskibarqy/b1g-analytics/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/b1g-analytics/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/b1g-analytics/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/b1g-analytics/internal/interfaces/httpapi"
	"github.com/riskibarqy/b1g-analytics/internal/observability"
	"github.com/riskibarqy/b1g-analytics/internal/platform/cache"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
	"github.com/riskibarqy/b1g-analytics/internal/platform/resilience"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const redisKeyPrefix = "b1g:espn:"

// App holds the wired services shared by the API server and the CLI.
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	Metrics   *observability.Metrics
	Provider  *espn.Client
	Reconcile *usecase.ReconciliationService
	Ingest    *usecase.IngestService
	Teams     *usecase.TeamService

	db      *sqlx.DB
	closers []func() error
}

type repositories struct {
	teams team.Repository
	games game.Repository
	stats teamstat.Repository
	raw   rawdata.Repository
}

// New builds storage, the ESPN client and the usecase services.
func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{Config: cfg, Logger: logger}
	if cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics(observability.WithRuntimeCollectors())
	}

	repos, err := a.buildRepositories()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	responseCache, err := a.buildResponseCache()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	clientCfg := espn.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.ESPNTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:         cfg.ESPNBaseURL,
		ConferenceGroup: cfg.ESPNConferenceGroupID,
		Timeout:         cfg.ESPNTimeout,
		MaxRetries:      cfg.ESPNMaxRetries,
		Logger:          logger.With("component", "espn"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
		Cache:    responseCache,
		CacheTTL: cfg.ESPNCacheTTL,
	}
	if cfg.ESPNArchiveRaw {
		clientCfg.Archive = repos.raw
	}
	if a.Metrics != nil {
		clientCfg.Observer = a.Metrics
	}
	a.Provider = espn.NewClient(clientCfg)

	var observer usecase.IngestObserver
	if a.Metrics != nil {
		observer = a.Metrics
	}

	a.Reconcile = usecase.NewReconciliationService(repos.teams, repos.games, repos.stats, logger)
	a.Ingest = usecase.NewIngestService(a.Provider, a.Reconcile, observer, logger)
	a.Teams = usecase.NewTeamService(repos.teams, repos.games, repos.stats)

	return a, nil
}

func (a *App) buildRepositories() (repositories, error) {
	var repos repositories

	switch a.Config.StorageDriver {
	case config.StorageDriverMemory:
		seed := memory.SeedTeams()
		a.Logger.Warn("using in-memory storage, data is lost on restart", "seeded_teams", len(seed))
		repos = repositories{
			teams: memory.NewTeamRepository(seed),
			games: memory.NewGameRepository(),
			stats: memory.NewTeamStatRepository(),
			raw:   memory.NewRawDataRepository(),
		}
	default:
		db, err := openPostgres(a.Config)
		if err != nil {
			return repositories{}, err
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
		repos = repositories{
			teams: postgres.NewTeamRepository(db),
			games: postgres.NewGameRepository(db),
			stats: postgres.NewTeamStatRepository(db),
			raw:   postgres.NewRawDataRepository(db),
		}
	}

	if a.Config.CacheEnabled {
		repos.teams = cacherepo.NewTeamRepository(repos.teams, a.Config.CacheTTL)
		repos.games = cacherepo.NewGameRepository(repos.games, a.Config.CacheTTL)
	}

	return repos, nil
}

func (a *App) buildResponseCache() (espn.ResponseCache, error) {
	if a.Config.ESPNCacheTTL <= 0 {
		return nil, nil
	}
	if a.Config.RedisURL != "" {
		rc, err := rediscache.NewRedisCache(a.Config.RedisURL, redisKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("build espn response cache: %w", err)
		}
		a.closers = append(a.closers, rc.Close)
		return rc, nil
	}

	return espn.NewStoreCache(cache.NewStore[[]byte](a.Config.ESPNCacheTTL)), nil
}

// NewHTTPServer wires the API handler and its background job runner. The
// returned runner must be closed after the server stops.
func (a *App) NewHTTPServer() (*http.Server, *usecase.IngestJobRunner, error) {
	if a.Config.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	jobs, err := usecase.NewIngestJobRunner(a.Ingest, a.Logger.With("component", "ingest_jobs"))
	if err != nil {
		return nil, nil, fmt.Errorf("build ingest job runner: %w", err)
	}

	var pinger httpapi.StoragePinger
	if a.db != nil {
		pinger = a.db
	}
	var metricsHandler http.Handler
	if a.Metrics != nil {
		metricsHandler = a.Metrics.Handler()
	}

	handler := httpapi.NewHandler(a.Ingest, jobs, a.Reconcile, a.Teams, pinger, a.Logger)
	router := httpapi.NewRouter(handler, a.Logger, a.Config.CORSAllowedOrigins, a.Config.AdminToken, metricsHandler)

	return &http.Server{
		Addr:         a.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
	}, jobs, nil
}

// Close releases storage and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
