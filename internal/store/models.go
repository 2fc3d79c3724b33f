package store

import (
	"strings"
	"time"
)

// MediaKind distinguishes image and video queue items.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// ParseKind converts a string into a known MediaKind.
func ParseKind(value string) (MediaKind, bool) {
	normalized := MediaKind(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case KindImage, KindVideo:
		return normalized, true
	}
	return "", false
}

// ItemStatus represents the lifecycle of a queued media item.
type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemPosted  ItemStatus = "posted"
)

// AttemptStatus represents the lifecycle of one pipeline attempt.
type AttemptStatus string

const (
	AttemptRunning AttemptStatus = "running"
	AttemptSuccess AttemptStatus = "success"
	AttemptFailed  AttemptStatus = "failed"
	AttemptSkipped AttemptStatus = "skipped"
)

// SkipReasonNoPendingItem is logged when an account has nothing queued.
const SkipReasonNoPendingItem = "no-pending-item"

// Account holds identity and remote platform credentials.
type Account struct {
	ID          int64
	Username    string
	IGUserID    string
	AccessToken string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasCredentials reports whether the account can publish to the remote platform.
func (a *Account) HasCredentials() bool {
	return a != nil && strings.TrimSpace(a.IGUserID) != "" && strings.TrimSpace(a.AccessToken) != ""
}

// Item is a queued unit of media plus caption awaiting publication.
type Item struct {
	ID        int64
	AccountID int64
	Name      string
	Kind      MediaKind
	SourceURL string
	Status    ItemStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Run records one scheduler execution across all accounts.
type Run struct {
	ID            int64
	Trigger       string
	StartedAt     time.Time
	EndedAt       *time.Time
	AccountsTried int64
	Succeeded     int64
	Failed        int64
	Images        int64
	Videos        int64
}

// RunDelta describes atomic counter increments applied to a run record.
type RunDelta struct {
	AccountsTried int64
	Succeeded     int64
	Failed        int64
	Images        int64
	Videos        int64
}

// KindDelta returns a delta incrementing the media-kind counter for kind.
func KindDelta(kind MediaKind) RunDelta {
	if kind == KindVideo {
		return RunDelta{Videos: 1}
	}
	return RunDelta{Images: 1}
}

// Attempt records one pipeline execution (or skip) for one account.
type Attempt struct {
	ID          int64
	RunID       *int64
	AccountID   int64
	ItemID      *int64
	Kind        MediaKind
	Status      AttemptStatus
	ErrorReason string
	StartedAt   time.Time
	EndedAt     *time.Time
}
