package workflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"carousel/internal/logging"
	"carousel/internal/store"
)

// RunScheduled executes one pipeline pass for every account under a new run
// record, bounded by the configured fan-out. The trigger label is the cron
// expression that fired. The run record is created before anything else so a
// setup failure still leaves a trace, and it is closed on every exit path.
func (m *Manager) RunScheduled(ctx context.Context, trigger string) (*RunSummary, error) {
	run, err := m.store.CreateRun(ctx, trigger)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	defer m.closeRun(run.ID)

	accounts, err := m.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	results := m.fanOut(ctx, &run.ID, trigger, accounts)
	return &RunSummary{RunID: &run.ID, Trigger: trigger, Results: results}, nil
}

// RunForAllAccounts executes one pipeline pass for every account without
// recording a run. Manual triggers keep their attempt logs but no run record;
// only scheduled passes are counted.
func (m *Manager) RunForAllAccounts(ctx context.Context, trigger string) (*RunSummary, error) {
	accounts, err := m.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	results := m.fanOut(ctx, nil, trigger, accounts)
	return &RunSummary{Trigger: trigger, Results: results}, nil
}

// RunForAccount executes one pipeline pass for a single account, outside any
// run record.
func (m *Manager) RunForAccount(ctx context.Context, accountID int64, trigger string) (*RunSummary, error) {
	account, err := m.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d not found", accountID)
	}

	result := m.ProcessNext(ctx, nil, account)
	return &RunSummary{Trigger: trigger, Results: []Result{result}}, nil
}

// fanOut runs one pass per account with bounded parallelism. Run counters are
// touched only when a run record exists.
func (m *Manager) fanOut(ctx context.Context, runID *int64, trigger string, accounts []*store.Account) []Result {
	logger := m.logger.With(logging.String(logging.FieldTrigger, trigger))
	if runID != nil {
		logger = logger.With(logging.Int64(logging.FieldRunID, *runID))
	}
	logger.Info("pass started", logging.Int("accounts", len(accounts)))

	results := make([]Result, len(accounts))
	group, groupCtx := errgroup.WithContext(ctx)
	limit := m.cfg.Scheduler.Concurrency
	if limit < 1 {
		limit = 1
	}
	group.SetLimit(limit)

	for index, account := range accounts {
		group.Go(func() error {
			if runID != nil {
				m.addStats(groupCtx, *runID, store.RunDelta{AccountsTried: 1})
			}
			result := m.ProcessNext(groupCtx, runID, account)
			if runID != nil {
				m.recordOutcome(groupCtx, *runID, result)
			}
			results[index] = result
			return nil
		})
	}
	// Workers never return errors; failures are captured per result.
	_ = group.Wait()

	summary := &RunSummary{RunID: runID, Trigger: trigger, Results: results}
	logger.Info("pass finished",
		logging.Int("succeeded", summary.Succeeded()),
		logging.Int("failed", summary.Failed()),
		logging.Int("skipped", summary.Skipped()),
	)
	return results
}

func (m *Manager) recordOutcome(ctx context.Context, runID int64, result Result) {
	switch result.Outcome {
	case OutcomeSuccess:
		delta := store.KindDelta(result.Kind)
		delta.Succeeded = 1
		m.addStats(ctx, runID, delta)
	case OutcomeFailed:
		delta := store.KindDelta(result.Kind)
		delta.Failed = 1
		m.addStats(ctx, runID, delta)
	}
}

func (m *Manager) addStats(ctx context.Context, runID int64, delta store.RunDelta) {
	if err := m.store.AddRunStats(ctx, runID, delta); err != nil {
		m.logger.Warn("update run stats failed", logging.Int64(logging.FieldRunID, runID), logging.Error(err))
	}
}

// closeRun stamps the run's end time even when the triggering context is
// already canceled.
func (m *Manager) closeRun(runID int64) {
	if err := m.store.CloseRun(context.Background(), runID); err != nil {
		m.logger.Warn("close run failed", logging.Int64(logging.FieldRunID, runID), logging.Error(err))
	}
}
