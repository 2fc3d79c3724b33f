package api

import (
	"time"

	"carousel/internal/store"
)

const timeFormat = time.RFC3339

type itemView struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	SourceURL string `json:"source_url"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func viewItem(item *store.Item) itemView {
	return itemView{
		ID:        item.ID,
		AccountID: item.AccountID,
		Name:      item.Name,
		Kind:      string(item.Kind),
		SourceURL: item.SourceURL,
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt.Format(timeFormat),
		UpdatedAt: item.UpdatedAt.Format(timeFormat),
	}
}

type runView struct {
	ID            int64  `json:"id"`
	Trigger       string `json:"trigger"`
	StartedAt     string `json:"started_at"`
	EndedAt       string `json:"ended_at,omitempty"`
	AccountsTried int64  `json:"accounts_tried"`
	Succeeded     int64  `json:"succeeded"`
	Failed        int64  `json:"failed"`
	Images        int64  `json:"images"`
	Videos        int64  `json:"videos"`
}

func viewRun(run *store.Run) runView {
	view := runView{
		ID:            run.ID,
		Trigger:       run.Trigger,
		StartedAt:     run.StartedAt.Format(timeFormat),
		AccountsTried: run.AccountsTried,
		Succeeded:     run.Succeeded,
		Failed:        run.Failed,
		Images:        run.Images,
		Videos:        run.Videos,
	}
	if run.EndedAt != nil {
		view.EndedAt = run.EndedAt.Format(timeFormat)
	}
	return view
}

type attemptView struct {
	ID          int64  `json:"id"`
	RunID       *int64 `json:"run_id,omitempty"`
	AccountID   int64  `json:"account_id"`
	ItemID      *int64 `json:"item_id,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Status      string `json:"status"`
	ErrorReason string `json:"error_reason,omitempty"`
	StartedAt   string `json:"started_at"`
	EndedAt     string `json:"ended_at,omitempty"`
}

func viewAttempt(attempt *store.Attempt) attemptView {
	view := attemptView{
		ID:          attempt.ID,
		RunID:       attempt.RunID,
		AccountID:   attempt.AccountID,
		ItemID:      attempt.ItemID,
		Kind:        string(attempt.Kind),
		Status:      string(attempt.Status),
		ErrorReason: attempt.ErrorReason,
		StartedAt:   attempt.StartedAt.Format(timeFormat),
	}
	if attempt.EndedAt != nil {
		view.EndedAt = attempt.EndedAt.Format(timeFormat)
	}
	return view
}
