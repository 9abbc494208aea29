package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
)

// StoragePinger reports whether the backing store is reachable.
type StoragePinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	ingestService    *usecase.IngestService
	ingestJobs       *usecase.IngestJobRunner
	reconcileService *usecase.ReconciliationService
	teamService      *usecase.TeamService
	storage          StoragePinger
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	ingestService *usecase.IngestService,
	ingestJobs *usecase.IngestJobRunner,
	reconcileService *usecase.ReconciliationService,
	teamService *usecase.TeamService,
	storage StoragePinger,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		ingestService:    ingestService,
		ingestJobs:       ingestJobs,
		reconcileService: reconcileService,
		teamService:      teamService,
		storage:          storage,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health checks that storage answers a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Health")
	defer span.End()

	if h.storage != nil {
		if err := h.storage.PingContext(ctx); err != nil {
			h.logger.WarnContext(ctx, "storage health check failed", "error", err)
			writeError(ctx, w, fmt.Errorf("%w: storage ping: %v", usecase.ErrDependencyUnavailable, err))
			return
		}
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
