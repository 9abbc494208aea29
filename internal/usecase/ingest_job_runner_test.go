package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
)

type blockingIngest struct {
	started chan string
	release chan struct{}
	panics  bool
}

func (b *blockingIngest) Plan(req IngestRequest) (IngestPlan, error) {
	return NormalizeIngestRequest(req, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func (b *blockingIngest) Execute(_ context.Context, runID string, plan IngestPlan) (IngestSummary, error) {
	b.started <- runID
	<-b.release
	if b.panics {
		panic("boom")
	}
	return IngestSummary{RunID: runID, Mode: plan.Mode, Season: plan.Season, Errors: []IngestError{}}, nil
}

func TestIngestJobRunner_RejectsConcurrentRuns(t *testing.T) {
	t.Parallel()

	ingest := &blockingIngest{started: make(chan string, 1), release: make(chan struct{})}
	runner, err := NewIngestJobRunner(ingest, logging.NewNop())
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	job, err := runner.Submit(context.Background(), IngestRequest{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.RunID == "" || job.Status != IngestJobStatusRunning {
		t.Fatalf("unexpected job: %+v", job)
	}
	if runID := <-ingest.started; runID != job.RunID {
		t.Fatalf("executor saw run id %s, want %s", runID, job.RunID)
	}

	if _, err := runner.Submit(context.Background(), IngestRequest{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while running, got=%v", err)
	}
	if last, ok := runner.Last(); !ok || last.Status != IngestJobStatusRunning {
		t.Fatalf("expected running job, got=%+v ok=%v", last, ok)
	}

	close(ingest.release)
	if err := runner.Close(5 * time.Second); err != nil {
		t.Fatalf("close: %v", err)
	}

	last, ok := runner.Last()
	if !ok || last.Status != IngestJobStatusSucceeded || last.FinishedAt == nil {
		t.Fatalf("expected finished job, got=%+v", last)
	}
	if last.Summary == nil || last.Summary.Season != 2025 {
		t.Fatalf("unexpected summary: %+v", last.Summary)
	}
}

func TestIngestJobRunner_ValidatesBeforeSubmitting(t *testing.T) {
	t.Parallel()

	ingest := &blockingIngest{started: make(chan string, 1), release: make(chan struct{})}
	runner, err := NewIngestJobRunner(ingest, logging.NewNop())
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	defer func() { _ = runner.Close(time.Second) }()

	if _, err := runner.Submit(context.Background(), IngestRequest{Mode: "team"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
	if _, ok := runner.Last(); ok {
		t.Fatalf("expected no job to be recorded")
	}
}

func TestIngestJobRunner_RecoversPanics(t *testing.T) {
	t.Parallel()

	ingest := &blockingIngest{started: make(chan string, 1), release: make(chan struct{}), panics: true}
	runner, err := NewIngestJobRunner(ingest, logging.NewNop())
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	if _, err := runner.Submit(context.Background(), IngestRequest{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-ingest.started
	close(ingest.release)
	if err := runner.Close(5 * time.Second); err != nil {
		t.Fatalf("close: %v", err)
	}

	last, ok := runner.Last()
	if !ok || last.Status != IngestJobStatusFailed || last.Error == "" {
		t.Fatalf("expected failed job, got=%+v", last)
	}
}
