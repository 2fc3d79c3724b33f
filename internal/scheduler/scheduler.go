// Package scheduler fires pipeline runs on the configured cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"carousel/internal/logging"
	"carousel/internal/workflow"
)

// Runner is the run entry point the scheduler invokes on each trigger.
// Scheduled passes record a run; the manual trigger paths do not.
type Runner interface {
	RunScheduled(ctx context.Context, trigger string) (*workflow.RunSummary, error)
}

// Scheduler owns the cron engine and the background context runs execute in.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a scheduler registering one trigger per cron expression. The
// expressions use standard five-field cron syntax.
func New(expressions []string, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := &Scheduler{
		cron:   cron.New(),
		runner: runner,
		logger: logging.NewComponentLogger(logger, "scheduler"),
		ctx:    ctx,
		cancel: cancel,
	}

	for _, expression := range expressions {
		if _, err := scheduler.cron.AddFunc(expression, scheduler.trigger(expression)); err != nil {
			cancel()
			return nil, fmt.Errorf("register cron expression %q: %w", expression, err)
		}
	}
	return scheduler, nil
}

func (s *Scheduler) trigger(expression string) func() {
	return func() {
		s.logger.Info("cron trigger fired", logging.String(logging.FieldTrigger, expression))
		if _, err := s.runner.RunScheduled(s.ctx, expression); err != nil {
			s.logger.Error("scheduled run failed",
				logging.String(logging.FieldTrigger, expression),
				logging.Error(err),
			)
		}
	}
}

// Start begins firing triggers.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", logging.Int("triggers", len(s.cron.Entries())))
}

// Stop halts future triggers, cancels in-flight runs, and waits for cron
// callbacks to return.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	s.cancel()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}
