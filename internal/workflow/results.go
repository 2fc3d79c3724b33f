package workflow

import "carousel/internal/store"

// Outcome classifies how one account's pipeline pass ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result reports one account's pipeline pass.
type Result struct {
	AccountID int64           `json:"account_id"`
	Username  string          `json:"username"`
	Outcome   Outcome         `json:"outcome"`
	Reason    string          `json:"reason,omitempty"`
	ItemID    *int64          `json:"item_id,omitempty"`
	ItemName  string          `json:"item_name,omitempty"`
	Kind      store.MediaKind `json:"kind,omitempty"`
	MediaID   string          `json:"media_id,omitempty"`
	AttemptID int64           `json:"attempt_id,omitempty"`
}

// RunSummary reports one full pass across accounts. RunID is set only for
// scheduled passes; manual triggers run outside any run record.
type RunSummary struct {
	RunID   *int64   `json:"run_id,omitempty"`
	Trigger string   `json:"trigger"`
	Results []Result `json:"results"`
}

func (s *RunSummary) countOutcome(outcome Outcome) int {
	count := 0
	for _, result := range s.Results {
		if result.Outcome == outcome {
			count++
		}
	}
	return count
}

// Succeeded returns how many accounts published media this run.
func (s *RunSummary) Succeeded() int { return s.countOutcome(OutcomeSuccess) }

// Failed returns how many accounts failed this run.
func (s *RunSummary) Failed() int { return s.countOutcome(OutcomeFailed) }

// Skipped returns how many accounts had nothing queued this run.
func (s *RunSummary) Skipped() int { return s.countOutcome(OutcomeSkipped) }

func skippedResult(account *store.Account, attempt *store.Attempt) Result {
	result := Result{
		AccountID: account.ID,
		Username:  account.Username,
		Outcome:   OutcomeSkipped,
		Reason:    store.SkipReasonNoPendingItem,
	}
	if attempt != nil {
		result.AttemptID = attempt.ID
	}
	return result
}
