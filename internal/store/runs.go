package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, trigger_label, started_at, ended_at, accounts_tried, succeeded, failed, images, videos"

// CreateRun inserts a new run record for a scheduling trigger.
func (s *Store) CreateRun(ctx context.Context, trigger string) (*Run, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (trigger_label, started_at) VALUES (?, ?)`,
		trigger,
		timestamp(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRun(ctx, id)
}

// GetRun fetches a run record by identifier. Returns nil when missing.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent run records, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AddRunStats applies counter increments in a single atomic update so
// concurrent pipelines never lose each other's counts.
func (s *Store) AddRunStats(ctx context.Context, id int64, delta RunDelta) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs
         SET accounts_tried = accounts_tried + ?,
             succeeded = succeeded + ?,
             failed = failed + ?,
             images = images + ?,
             videos = videos + ?
         WHERE id = ?`,
		delta.AccountsTried,
		delta.Succeeded,
		delta.Failed,
		delta.Images,
		delta.Videos,
		id,
	)
	if err != nil {
		return fmt.Errorf("add run stats: %w", err)
	}
	return nil
}

// CloseRun sets the run's end timestamp. Closing an already-closed run keeps
// the original end time.
func (s *Store) CloseRun(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		timestamp(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("close run: %w", err)
	}
	return nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id            int64
		trigger       string
		startedRaw    sql.NullString
		endedRaw      sql.NullString
		accountsTried int64
		succeeded     int64
		failed        int64
		images        int64
		videos        int64
	)

	if err := scanner.Scan(&id, &trigger, &startedRaw, &endedRaw, &accountsTried, &succeeded, &failed, &images, &videos); err != nil {
		return nil, err
	}

	run := &Run{
		ID:            id,
		Trigger:       trigger,
		AccountsTried: accountsTried,
		Succeeded:     succeeded,
		Failed:        failed,
		Images:        images,
		Videos:        videos,
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		run.StartedAt = started
	}
	run.EndedAt = parseNullableTime(endedRaw)
	return run, nil
}
