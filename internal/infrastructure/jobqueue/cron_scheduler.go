package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
	"github.com/robfig/cron/v3"
)

const DefaultReconcileSpec = "@every 6h"

type ReconcileRunner interface {
	RunReconcile(ctx context.Context, trigger jobrun.Trigger) (jobrun.Run, error)
}

// Purger drops expired entries, e.g. the session cache.
type Purger interface {
	Purge() int
}

type CronSchedulerConfig struct {
	Spec       string
	RunOnStart bool
	RunTimeout time.Duration
	Location   *time.Location
	PurgeSpec  string
	Purger     Purger
}

// CronScheduler triggers reconcile runs on a cron spec. Ticks that fire
// while a run is still going are skipped.
type CronScheduler struct {
	cron       *cron.Cron
	runner     ReconcileRunner
	logger     *logging.Logger
	runOnStart bool
	runTimeout time.Duration
	entryID    cron.EntryID

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewCronScheduler(runner ReconcileRunner, cfg CronSchedulerConfig, logger *logging.Logger) (*CronScheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("reconcile runner is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("cron")

	spec := strings.TrimSpace(cfg.Spec)
	if spec == "" {
		spec = DefaultReconcileSpec
	}
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{logger: logger}
	baseCtx, cancel := context.WithCancel(context.Background())
	s := &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:     runner,
		logger:     logger,
		runOnStart: cfg.RunOnStart,
		runTimeout: timeout,
		baseCtx:    baseCtx,
		cancel:     cancel,
	}

	id, err := s.cron.AddFunc(spec, func() { s.run(jobrun.TriggerScheduled) })
	if err != nil {
		cancel()
		return nil, fmt.Errorf("parse reconcile schedule %q: %w", spec, err)
	}
	s.entryID = id

	if cfg.Purger != nil && strings.TrimSpace(cfg.PurgeSpec) != "" {
		purger := cfg.Purger
		if _, err := s.cron.AddFunc(cfg.PurgeSpec, func() {
			if n := purger.Purge(); n > 0 {
				logger.Debug("purged expired cache entries", "count", n)
			}
		}); err != nil {
			cancel()
			return nil, fmt.Errorf("parse purge schedule %q: %w", cfg.PurgeSpec, err)
		}
	}

	return s, nil
}

func (s *CronScheduler) Start() {
	s.cron.Start()
	s.logger.Info("reconcile scheduler started", "next_run", s.NextRun())
	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run(jobrun.TriggerStartup)
		}()
	}
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.cancel()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop reconcile scheduler: %w", ctx.Err())
	}
}

func (s *CronScheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}

func (s *CronScheduler) run(trigger jobrun.Trigger) {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.runTimeout)
	defer cancel()

	run, err := s.runner.RunReconcile(ctx, trigger)
	switch {
	case errors.Is(err, usecase.ErrRunInProgress):
		s.logger.Info("reconcile tick skipped, run in progress", "trigger", trigger)
	case err != nil:
		s.logger.Warn("scheduled reconcile failed", "trigger", trigger, "run_id", run.ID, "error", err)
	default:
		s.logger.Info("scheduled reconcile finished", "trigger", trigger, "run_id", run.ID, "status", run.Status)
	}
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
