package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
)

const maxIngestBodyBytes = 64 << 10

type ingestRequestBody struct {
	Season          int    `json:"season" validate:"omitempty,min=1900,max=2200"`
	Team            string `json:"team" validate:"omitempty,max=100"`
	Mode            string `json:"mode" validate:"omitempty,oneof=all team"`
	Since           string `json:"since" validate:"omitempty,datetime=2006-01-02"`
	Until           string `json:"until" validate:"omitempty,datetime=2006-01-02"`
	IncludeBoxscore bool   `json:"includeBoxscore"`
}

func (b ingestRequestBody) toRequest() usecase.IngestRequest {
	return usecase.IngestRequest{
		Season:          b.Season,
		Team:            b.Team,
		Mode:            b.Mode,
		Since:           b.Since,
		Until:           b.Until,
		IncludeBoxscore: b.IncludeBoxscore,
	}
}

// IngestFromQuery runs a synchronous ingest configured by query parameters.
func (h *Handler) IngestFromQuery(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestFromQuery")
	defer span.End()

	body, err := ingestBodyFromQuery(r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.runIngest(w, r.WithContext(ctx), body)
}

// IngestFromBody runs a synchronous ingest configured by a JSON body. An
// empty body uses the defaults.
func (h *Handler) IngestFromBody(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestFromBody")
	defer span.End()

	body, err := decodeIngestBody(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.runIngest(w, r.WithContext(ctx), body)
}

// IngestCron always ingests the whole conference.
func (h *Handler) IngestCron(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestCron")
	defer span.End()

	body, err := ingestBodyFromQuery(r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	body.Mode = string(usecase.IngestModeAll)
	body.Team = ""
	h.runIngest(w, r.WithContext(ctx), body)
}

func (h *Handler) runIngest(w http.ResponseWriter, r *http.Request, body ingestRequestBody) {
	ctx := r.Context()

	if err := h.validateRequest(ctx, body); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.ingestService.Run(ctx, body.toRequest())
	if err != nil {
		h.logger.WarnContext(ctx, "ingest request failed", "mode", body.Mode, "team", body.Team, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

// SubmitIngestJob queues a background ingest and answers 202 with the run id.
func (h *Handler) SubmitIngestJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitIngestJob")
	defer span.End()

	if h.ingestJobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingest job runner is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	body, err := decodeIngestBody(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, body); err != nil {
		writeError(ctx, w, err)
		return
	}

	job, err := h.ingestJobs.Submit(ctx, body.toRequest())
	if err != nil {
		h.logger.WarnContext(ctx, "submit ingest job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, job)
}

// GetLastIngestJob reports the most recent background run.
func (h *Handler) GetLastIngestJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLastIngestJob")
	defer span.End()

	if h.ingestJobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingest job runner is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	job, ok := h.ingestJobs.Last()
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no ingest job has been submitted", usecase.ErrNotFound))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, job)
}

func (h *Handler) SeedTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SeedTeams")
	defer span.End()

	counts, err := h.reconcileService.SeedKnownTeams(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "seed teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, counts)
}

func decodeIngestBody(r *http.Request) (ingestRequestBody, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBodyBytes))
	if err != nil {
		return ingestRequestBody{}, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return ingestRequestBody{}, nil
	}

	var body ingestRequestBody
	if err := sonic.Unmarshal(raw, &body); err != nil {
		return ingestRequestBody{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	body.Mode = strings.ToLower(strings.TrimSpace(body.Mode))
	body.Team = strings.TrimSpace(body.Team)

	return body, nil
}

func ingestBodyFromQuery(query url.Values) (ingestRequestBody, error) {
	body := ingestRequestBody{
		Team:            strings.TrimSpace(query.Get("team")),
		Mode:            strings.ToLower(strings.TrimSpace(query.Get("mode"))),
		Since:           strings.TrimSpace(query.Get("since")),
		Until:           strings.TrimSpace(query.Get("until")),
		IncludeBoxscore: parseQueryBool(query.Get("includeBoxscore")),
	}

	if raw := strings.TrimSpace(query.Get("season")); raw != "" {
		season, err := strconv.Atoi(raw)
		if err != nil {
			return ingestRequestBody{}, fmt.Errorf("%w: season must be an integer", usecase.ErrInvalidInput)
		}
		body.Season = season
	}

	return body, nil
}

func parseQueryBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
