package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"carousel/internal/logging"
	"carousel/internal/workflow"
)

type countingRunner struct {
	calls   atomic.Int32
	trigger atomic.Value
}

func (r *countingRunner) RunScheduled(_ context.Context, trigger string) (*workflow.RunSummary, error) {
	r.calls.Add(1)
	r.trigger.Store(trigger)
	return &workflow.RunSummary{Trigger: trigger}, nil
}

func TestNewRejectsInvalidCronExpression(t *testing.T) {
	if _, err := New([]string{"not a cron"}, &countingRunner{}, logging.NewNop()); err == nil {
		t.Fatal("expected invalid expression to fail")
	}
}

func TestNewRequiresRunner(t *testing.T) {
	if _, err := New([]string{"0 4 * * *"}, nil, logging.NewNop()); err == nil {
		t.Fatal("expected missing runner to fail")
	}
}

func TestTriggerInvokesRunnerWithExpressionLabel(t *testing.T) {
	runner := &countingRunner{}
	scheduler, err := New([]string{"0 4 * * *"}, runner, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	scheduler.trigger("0 4 * * *")()

	if runner.calls.Load() != 1 {
		t.Fatalf("expected one run, got %d", runner.calls.Load())
	}
	if got := runner.trigger.Load(); got != "0 4 * * *" {
		t.Fatalf("unexpected trigger label %v", got)
	}
}

func TestStartAndStopAreClean(t *testing.T) {
	runner := &countingRunner{}
	scheduler, err := New([]string{"0 4 * * *", "0 16 * * *"}, runner, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	scheduler.Start()
	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
