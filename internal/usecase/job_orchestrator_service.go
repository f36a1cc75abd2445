package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

const reconcileJobName = "reconcile-schedule"

// Reconciler is the part of ReconcileService the orchestrator drives.
type Reconciler interface {
	Run(ctx context.Context) (ReconcileResult, error)
}

type IDGenerator interface {
	NewID() (string, error)
}

// JobOrchestratorService wraps each reconcile run with the job ledger,
// panic isolation and the post-run hooks.
type JobOrchestratorService struct {
	reconciler Reconciler
	runs       jobrun.Repository
	ids        IDGenerator
	afterRun   []func(ctx context.Context, result ReconcileResult)
	logger     *logging.Logger
	now        func() time.Time
}

var runIDUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	reconciler Reconciler,
	runs jobrun.Repository,
	ids IDGenerator,
	logger *logging.Logger,
) *JobOrchestratorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &JobOrchestratorService{
		reconciler: reconciler,
		runs:       runs,
		ids:        ids,
		logger:     logger.Named("jobs"),
		now:        time.Now,
	}
}

// OnSuccess registers a hook run after every committed reconcile, e.g. to
// drop cached standings.
func (s *JobOrchestratorService) OnSuccess(fn func(ctx context.Context, result ReconcileResult)) {
	if fn != nil {
		s.afterRun = append(s.afterRun, fn)
	}
}

// RunReconcile executes one reconcile and records it. An overlapping call
// is recorded as skipped and returns ErrRunInProgress.
func (s *JobOrchestratorService) RunReconcile(ctx context.Context, trigger jobrun.Trigger) (run jobrun.Run, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunReconcile")
	defer func() { endSpan(span, err) }()

	startedAt := s.now().UTC()
	run = jobrun.Run{
		ID:        s.runID(trigger, startedAt),
		JobName:   reconcileJobName,
		Trigger:   trigger,
		Status:    jobrun.StatusRunning,
		StartedAt: startedAt,
	}
	ctx = logging.ContextWith(ctx, "run_id", run.ID, "trigger", string(trigger))
	s.record(ctx, run)

	var (
		result ReconcileResult
		runErr error
	)
	var catcher panics.Catcher
	catcher.Try(func() {
		result, runErr = s.reconciler.Run(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		runErr = fmt.Errorf("reconcile panicked: %w", recovered.AsError())
		s.logger.ErrorContext(ctx, "reconcile run panicked", "stack", string(recovered.Stack))
	}

	finishedAt := s.now().UTC()
	run.FinishedAt = &finishedAt
	switch {
	case errors.Is(runErr, ErrRunInProgress):
		run.Status = jobrun.StatusSkipped
		run.ErrorMessage = runErr.Error()
	case runErr != nil:
		run.Status = jobrun.StatusFailed
		run.ErrorMessage = runErr.Error()
	default:
		run.Status = jobrun.StatusSucceeded
		run.Summary = result.Summary()
	}
	s.record(ctx, run)

	if runErr != nil {
		s.logger.WarnContext(ctx, "reconcile run did not complete", "status", run.Status, "error", runErr)
		return run, runErr
	}

	for _, hook := range s.afterRun {
		hook(ctx, result)
	}
	return run, nil
}

func (s *JobOrchestratorService) ListRuns(ctx context.Context, limit int) ([]jobrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.ListRuns")
	defer span.End()

	if s.runs == nil {
		return []jobrun.Run{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}
	return items, nil
}

func (s *JobOrchestratorService) runID(trigger jobrun.Trigger, at time.Time) string {
	key := runKey(reconcileJobName, string(trigger), at)
	if s.ids == nil {
		return key
	}
	suffix, err := s.ids.NewID()
	if err != nil || len(suffix) < 8 {
		return key
	}
	return key + "-" + suffix[:8]
}

func runKey(job, trigger string, at time.Time) string {
	return sanitizeRunSegment(job) + "-" + sanitizeRunSegment(trigger) + "-" + at.UTC().Format("20060102T150405Z")
}

func sanitizeRunSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return runIDUnsafeCharRegex.ReplaceAllString(value, "-")
}

// record is best effort: a ledger outage must not fail the run itself.
func (s *JobOrchestratorService) record(ctx context.Context, run jobrun.Run) {
	if s.runs == nil {
		return
	}
	run.TraceID, run.SpanID = traceMetaFromContext(ctx)
	if err := s.runs.Upsert(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "record job run failed", "status", run.Status, "error", err)
	}
}
