package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

const (
	IngestJobStatusRunning   = "running"
	IngestJobStatusSucceeded = "succeeded"
	IngestJobStatusFailed    = "failed"
)

type ingestExecutor interface {
	Plan(req IngestRequest) (IngestPlan, error)
	Execute(ctx context.Context, runID string, plan IngestPlan) (IngestSummary, error)
}

// IngestJob describes a background run.
type IngestJob struct {
	RunID      string         `json:"runId"`
	Status     string         `json:"status"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt *time.Time     `json:"finishedAt,omitempty"`
	Summary    *IngestSummary `json:"summary,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// IngestJobRunner executes ingest runs in the background, one at a time.
// A submission while a run is in flight fails with ErrConflict.
type IngestJobRunner struct {
	pool   *ants.Pool
	ingest ingestExecutor
	logger *logging.Logger
	now    func() time.Time

	mu   sync.RWMutex
	last *IngestJob
}

func NewIngestJobRunner(ingest ingestExecutor, logger *logging.Logger) (*IngestJobRunner, error) {
	if ingest == nil {
		return nil, fmt.Errorf("ingest service is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(1, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create ingest worker pool: %w", err)
	}

	return &IngestJobRunner{
		pool:   pool,
		ingest: ingest,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Submit validates req and starts it in the background. The run outlives
// ctx cancellation but keeps its values for tracing.
func (r *IngestJobRunner) Submit(ctx context.Context, req IngestRequest) (IngestJob, error) {
	plan, err := r.ingest.Plan(req)
	if err != nil {
		return IngestJob{}, err
	}

	job := IngestJob{
		RunID:     uuid.NewString(),
		Status:    IngestJobStatusRunning,
		StartedAt: r.now().UTC(),
	}
	runCtx := context.WithoutCancel(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.pool.Submit(func() { r.run(runCtx, job, plan) }); err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			return IngestJob{}, fmt.Errorf("%w: an ingest run is already in progress", ErrConflict)
		}
		return IngestJob{}, fmt.Errorf("submit ingest run: %w", err)
	}

	snapshot := job
	r.last = &snapshot
	return job, nil
}

func (r *IngestJobRunner) run(ctx context.Context, job IngestJob, plan IngestPlan) {
	var (
		summary IngestSummary
		runErr  error
	)

	var catcher panics.Catcher
	catcher.Try(func() {
		summary, runErr = r.ingest.Execute(ctx, job.RunID, plan)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		runErr = recovered.AsError()
		r.logger.ErrorContext(ctx, "ingest run panicked", "run_id", job.RunID, "error", runErr)
	}

	finishedAt := r.now().UTC()
	job.FinishedAt = &finishedAt
	job.Summary = &summary
	job.Status = IngestJobStatusSucceeded
	if runErr != nil {
		job.Status = IngestJobStatusFailed
		job.Error = runErr.Error()
	}

	r.mu.Lock()
	r.last = &job
	r.mu.Unlock()
}

// Last returns the most recently submitted run.
func (r *IngestJobRunner) Last() (IngestJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.last == nil {
		return IngestJob{}, false
	}
	return *r.last, true
}

// Close waits up to timeout for an in-flight run to finish.
func (r *IngestJobRunner) Close(timeout time.Duration) error {
	return r.pool.ReleaseTimeout(timeout)
}
