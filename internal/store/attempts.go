package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const attemptColumns = "id, run_id, account_id, item_id, kind, status, error_reason, started_at, ended_at"

// OpenAttempt records the start of a pipeline execution before any work
// happens, so even an attempt that dies mid-pipeline leaves a durable trace.
func (s *Store) OpenAttempt(ctx context.Context, runID *int64, accountID int64, itemID *int64, kind MediaKind) (*Attempt, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO attempts (run_id, account_id, item_id, kind, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		nullableInt64(runID),
		accountID,
		nullableInt64(itemID),
		nullableString(string(kind)),
		AttemptRunning,
		timestamp(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetAttempt(ctx, id)
}

// CloseAttempt finalizes a running attempt with a terminal status. The status
// guard means an attempt closes at most once.
func (s *Store) CloseAttempt(ctx context.Context, id int64, status AttemptStatus, errorReason string) error {
	if status == AttemptRunning {
		return errors.New("cannot close attempt to running status")
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE attempts SET status = ?, error_reason = ?, ended_at = ? WHERE id = ? AND status = ?`,
		status,
		nullableString(errorReason),
		timestamp(time.Now()),
		id,
		AttemptRunning,
	)
	if err != nil {
		return fmt.Errorf("close attempt: %w", err)
	}
	return nil
}

// LogSkipped records a skipped attempt (nothing pending for the account).
func (s *Store) LogSkipped(ctx context.Context, runID *int64, accountID int64, reason string) (*Attempt, error) {
	now := timestamp(time.Now())
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO attempts (run_id, account_id, item_id, kind, status, error_reason, started_at, ended_at)
         VALUES (?, ?, NULL, NULL, ?, ?, ?, ?)`,
		nullableInt64(runID),
		accountID,
		AttemptSkipped,
		nullableString(reason),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert skipped attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetAttempt(ctx, id)
}

// GetAttempt fetches an attempt by identifier. Returns nil when missing.
func (s *Store) GetAttempt(ctx context.Context, id int64) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE id = ?`, id)
	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return attempt, nil
}

// ListAttempts returns the most recent attempts, newest first.
func (s *Store) ListAttempts(ctx context.Context, limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+attemptColumns+` FROM attempts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// AttemptsForRun returns all attempts recorded under a run, oldest first.
func (s *Store) AttemptsForRun(ctx context.Context, runID int64) ([]*Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("attempts for run: %w", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// AttemptsForAccount returns all attempts recorded for an account, oldest first.
func (s *Store) AttemptsForAccount(ctx context.Context, accountID int64) ([]*Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("attempts for account: %w", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func collectAttempts(rows *sql.Rows) ([]*Attempt, error) {
	var attempts []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func scanAttempt(scanner interface{ Scan(dest ...any) error }) (*Attempt, error) {
	var (
		id          int64
		runID       sql.NullInt64
		accountID   int64
		itemID      sql.NullInt64
		kind        sql.NullString
		statusStr   string
		errorReason sql.NullString
		startedRaw  sql.NullString
		endedRaw    sql.NullString
	)

	if err := scanner.Scan(&id, &runID, &accountID, &itemID, &kind, &statusStr, &errorReason, &startedRaw, &endedRaw); err != nil {
		return nil, err
	}

	attempt := &Attempt{
		ID:          id,
		AccountID:   accountID,
		Kind:        MediaKind(kind.String),
		Status:      AttemptStatus(statusStr),
		ErrorReason: errorReason.String,
	}
	if runID.Valid {
		value := runID.Int64
		attempt.RunID = &value
	}
	if itemID.Valid {
		value := itemID.Int64
		attempt.ItemID = &value
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		attempt.StartedAt = started
	}
	attempt.EndedAt = parseNullableTime(endedRaw)
	return attempt, nil
}
