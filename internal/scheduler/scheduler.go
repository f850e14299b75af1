package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"TokenPulse/internal/usecase"
	applogger "TokenPulse/pkg/logger"
)

// Scheduler triggers periodic scans over the whole token universe.
type Scheduler struct {
	cron   *cron.Cron
	runner *usecase.ScanRunner
	log    *applogger.Logger
	ctx    context.Context
}

// New creates a scheduler driving runner on the given cron expression.
func New(ctx context.Context, runner *usecase.ScanRunner, log *applogger.Logger) *Scheduler {
	if log == nil {
		log = applogger.Nop()
	}
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		log:    log,
		ctx:    ctx,
	}
}

// Register adds the periodic full-universe scan.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron loop and waits for a running task to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.log.Warn("scheduler stop timed out")
	}
	s.log.Info("scheduler stopped")
}

// RunNow executes the scan task immediately (manual trigger / run-on-start).
func (s *Scheduler) RunNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	s.log.Info("running scheduled scan")
	result, err := s.runner.RunOnce(s.ctx, nil)
	if err != nil {
		s.log.Error("scheduled scan failed", applogger.Error(err))
		return
	}
	s.log.Info("scheduled scan done",
		applogger.String("run_id", result.RunID),
		applogger.Int("buys", len(result.Buys())))
}
