package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
	jobrunmock "github.com/riskibarqy/nfl-pickem/internal/mocks/domain/jobrun"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type reconcilerFunc func(ctx context.Context) (ReconcileResult, error)

func (f reconcilerFunc) Run(ctx context.Context) (ReconcileResult, error) { return f(ctx) }

type fixedIDs struct{ id string }

func (f fixedIDs) NewID() (string, error) { return f.id, nil }

func runWithStatus(status jobrun.Status) any {
	return mock.MatchedBy(func(run jobrun.Run) bool { return run.Status == status })
}

func TestRunKey_IsSafeForIDs(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.September, 8, 17, 0, 42, 0, time.UTC)
	got := runKey(reconcileJobName, "sched uled:x", at)

	if strings.ContainsAny(got, ": ") {
		t.Fatalf("run key must not contain separators, got=%q", got)
	}
	want := "reconcile-schedule-sched-uled-x-20240908T170042Z"
	if got != want {
		t.Fatalf("unexpected run key: got=%q want=%q", got, want)
	}
}

func TestSanitizeRunSegment_EmptyFallback(t *testing.T) {
	t.Parallel()

	if got := sanitizeRunSegment(" \t "); got != "unknown" {
		t.Fatalf("unexpected sanitize fallback: got=%q want=%q", got, "unknown")
	}
}

func TestJobOrchestrator_RecordsSuccessAndRunsHooks(t *testing.T) {
	t.Parallel()

	runs := jobrunmock.NewRepository(t)
	runs.On("Upsert", mock.Anything, runWithStatus(jobrun.StatusRunning)).Return(nil).Once()
	runs.On("Upsert", mock.Anything, runWithStatus(jobrun.StatusSucceeded)).Return(nil).Once()

	reconciler := reconcilerFunc(func(context.Context) (ReconcileResult, error) {
		return ReconcileResult{Year: 2024, Week: "WEEK 1", Games: 16, MatchesCreated: 16}, nil
	})
	svc := NewJobOrchestratorService(reconciler, runs, fixedIDs{id: "abcdef0123456789"}, logging.NewNop())

	var hooked ReconcileResult
	svc.OnSuccess(func(_ context.Context, result ReconcileResult) { hooked = result })

	run, err := svc.RunReconcile(context.Background(), jobrun.TriggerScheduled)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Status != jobrun.StatusSucceeded || run.FinishedAt == nil {
		t.Fatalf("unexpected run: %+v", run)
	}
	if !strings.HasPrefix(run.ID, "reconcile-schedule-scheduled-") || !strings.HasSuffix(run.ID, "-abcdef01") {
		t.Fatalf("unexpected run id %q", run.ID)
	}
	if hooked.Games != 16 {
		t.Fatalf("expected success hook to receive the result, got %+v", hooked)
	}
	if run.Summary == nil {
		t.Fatalf("expected summary on success")
	}
}

func TestJobOrchestrator_FailureSkipsHooks(t *testing.T) {
	t.Parallel()

	runs := jobrunmock.NewRepository(t)
	runs.On("Upsert", mock.Anything, runWithStatus(jobrun.StatusRunning)).Return(nil).Once()
	runs.On("Upsert", mock.Anything, runWithStatus(jobrun.StatusFailed)).Return(nil).Once()

	reconciler := reconcilerFunc(func(context.Context) (ReconcileResult, error) {
		return ReconcileResult{}, ErrFetchFailure
	})
	svc := NewJobOrchestratorService(reconciler, runs, nil, logging.NewNop())
	svc.OnSuccess(func(context.Context, ReconcileResult) { t.Fatalf("hook must not run on failure") })

	run, err := svc.RunReconcile(context.Background(), jobrun.TriggerManual)
	if !errors.Is(err, ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	if run.Status != jobrun.StatusFailed || run.ErrorMessage == "" {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestJobOrchestrator_OverlapIsSkipped(t *testing.T) {
	t.Parallel()

	runs := jobrunmock.NewRepository(t)
	runs.On("Upsert", mock.Anything, runWithStatus(jobrun.StatusRunning)).Return(nil).Once()
	runs.On("Upsert", mock.Anything, runWithStatus(jobrun.StatusSkipped)).Return(nil).Once()

	reconciler := reconcilerFunc(func(context.Context) (ReconcileResult, error) {
		return ReconcileResult{}, ErrRunInProgress
	})
	svc := NewJobOrchestratorService(reconciler, runs, nil, logging.NewNop())

	run, err := svc.RunReconcile(context.Background(), jobrun.TriggerScheduled)
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected run in progress, got %v", err)
	}
	if run.Status != jobrun.StatusSkipped {
		t.Fatalf("unexpected status %s", run.Status)
	}
}

func TestJobOrchestrator_PanicBecomesFailedRun(t *testing.T) {
	t.Parallel()

	runs := jobrunmock.NewRepository(t)
	runs.On("Upsert", mock.Anything, runWithStatus(jobrun.StatusRunning)).Return(nil).Once()
	runs.On("Upsert", mock.Anything, runWithStatus(jobrun.StatusFailed)).Return(nil).Once()

	reconciler := reconcilerFunc(func(context.Context) (ReconcileResult, error) {
		panic("boom")
	})
	svc := NewJobOrchestratorService(reconciler, runs, nil, logging.NewNop())

	run, err := svc.RunReconcile(context.Background(), jobrun.TriggerScheduled)
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("expected panic error, got %v", err)
	}
	if run.Status != jobrun.StatusFailed {
		t.Fatalf("unexpected status %s", run.Status)
	}
}

func TestJobOrchestrator_LedgerOutageDoesNotFailRun(t *testing.T) {
	t.Parallel()

	runs := jobrunmock.NewRepository(t)
	runs.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("db down")).Twice()

	reconciler := reconcilerFunc(func(context.Context) (ReconcileResult, error) { return ReconcileResult{}, nil })
	svc := NewJobOrchestratorService(reconciler, runs, nil, logging.NewNop())

	if _, err := svc.RunReconcile(context.Background(), jobrun.TriggerManual); err != nil {
		t.Fatalf("ledger failure must not fail the run: %v", err)
	}
}

func TestJobOrchestrator_ListRunsClampsLimit(t *testing.T) {
	t.Parallel()

	runs := jobrunmock.NewRepository(t)
	runs.On("ListRecent", mock.Anything, 20).Return([]jobrun.Run{{ID: "a"}}, nil).Twice()

	svc := NewJobOrchestratorService(nil, runs, nil, logging.NewNop())
	for _, limit := range []int{0, 500} {
		items, err := svc.ListRuns(context.Background(), limit)
		if err != nil || len(items) != 1 {
			t.Fatalf("limit %d: items=%v err=%v", limit, items, err)
		}
	}
}
