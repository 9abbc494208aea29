package httpapi

import (
	"net/http"

	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
)

type route struct {
	pattern string
	handler http.HandlerFunc
	admin   bool
}

func (h *Handler) routes() []route {
	return []route{
		{pattern: "GET /healthz", handler: h.Healthz},
		{pattern: "GET /v1/health", handler: h.Health},

		{pattern: "GET /v1/teams", handler: h.ListTeams},
		{pattern: "GET /v1/teams/{slug}", handler: h.GetTeam},
		{pattern: "GET /v1/teams/{slug}/games", handler: h.ListTeamGames},
		{pattern: "GET /v1/games/{externalID}", handler: h.GetGame},

		{pattern: "GET /v1/ingest", handler: h.IngestFromQuery, admin: true},
		{pattern: "POST /v1/ingest", handler: h.IngestFromBody, admin: true},
		{pattern: "GET /v1/ingest/cron", handler: h.IngestCron, admin: true},
		{pattern: "POST /v1/internal/jobs/ingest", handler: h.SubmitIngestJob, admin: true},
		{pattern: "GET /v1/internal/jobs/ingest", handler: h.GetLastIngestJob, admin: true},
		{pattern: "POST /v1/internal/teams/seed", handler: h.SeedTeams, admin: true},
	}
}

// NewRouter mounts every route behind tracing, request logging, CORS and
// panic recovery. Admin routes also require adminToken. metricsHandler is
// served on /metrics when non-nil.
func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	adminToken string,
	metricsHandler http.Handler,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	for _, rt := range handler.routes() {
		var h http.Handler = rt.handler
		if rt.admin {
			h = RequireAdminToken(adminToken, h)
		}
		mux.Handle(rt.pattern, h)
	}
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	var root http.Handler = mux
	root = recoverPanic(logger, root)
	root = CORS(corsAllowedOrigins, root)
	root = RequestLogging(logger, root)
	return RequestTracing(root)
}
