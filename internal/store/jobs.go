package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MoKho/resume-api-backend/internal/jobs"
)

// JobQueue returns the claimable work queue backed by this store.
func (s *Store) JobQueue() jobs.Queue {
	return &jobQueue{store: s}
}

type jobQueue struct {
	store *Store
}

var _ jobs.Queue = (*jobQueue)(nil)

// Enqueue persists a new pending job.
func (q *jobQueue) Enqueue(ctx context.Context, rec *jobs.Record) error {
	payload := rec.Payload
	if payload == nil {
		payload = json.RawMessage("{}")
	}
	_, err := q.store.db.ExecContext(ctx, `
		INSERT INTO jobs (id, kind, payload, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Kind, string(payload), string(rec.Status),
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

// Get returns a job by id.
func (q *jobQueue) Get(ctx context.Context, id string) (*jobs.Record, error) {
	row := q.store.db.QueryRowContext(ctx, `
		SELECT id, kind, payload, status, result, error, created_at, updated_at, claimed_at
		FROM jobs WHERE id = ?
	`, id)
	return scanJob(row)
}

// ListPending returns up to limit pending jobs, oldest first.
func (q *jobQueue) ListPending(ctx context.Context, limit int) ([]*jobs.Record, error) {
	rows, err := q.store.db.QueryContext(ctx, `
		SELECT id, kind, payload, status, result, error, created_at, updated_at, claimed_at
		FROM jobs WHERE status = ? ORDER BY created_at LIMIT ?
	`, string(jobs.StatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("querying pending jobs: %w", err)
	}
	defer rows.Close()

	var recs []*jobs.Record
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending jobs: %w", err)
	}
	return recs, nil
}

// Claim performs the atomic pending -> claimed transition. The conditional
// UPDATE is the entire concurrency story: exactly one racing claimant
// observes a row change.
func (q *jobQueue) Claim(ctx context.Context, id string) (bool, error) {
	now := formatTime(time.Now())
	res, err := q.store.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, claimed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(jobs.StatusClaimed), now, now, id, string(jobs.StatusPending))
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	return n == 1, nil
}

// Complete finalizes a claimed job with its result.
func (q *jobQueue) Complete(ctx context.Context, id string, result json.RawMessage) error {
	return q.finalize(ctx, id, jobs.StatusCompleted, string(result), "")
}

// Fail finalizes a claimed job with an error message.
func (q *jobQueue) Fail(ctx context.Context, id string, msg string) error {
	return q.finalize(ctx, id, jobs.StatusFailed, "", msg)
}

// finalize moves a claimed job to a terminal state. The status guard keeps
// terminal records immutable even if a stale worker reports late.
func (q *jobQueue) finalize(ctx context.Context, id string, status jobs.Status, result, errMsg string) error {
	res, err := q.store.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, result = ?, error = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(status), nullString(result), nullString(errMsg), formatTime(time.Now()),
		id, string(jobs.StatusClaimed))
	if err != nil {
		return fmt.Errorf("finalizing job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalizing job: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finalizing job %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReclaimStuck returns jobs claimed longer than the lease to pending.
func (q *jobQueue) ReclaimStuck(ctx context.Context, lease time.Duration) (int, error) {
	cutoff := formatTime(time.Now().Add(-lease))
	res, err := q.store.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, claimed_at = NULL, updated_at = ?
		WHERE status = ? AND claimed_at < ?
	`, string(jobs.StatusPending), formatTime(time.Now()), string(jobs.StatusClaimed), cutoff)
	if err != nil {
		return 0, fmt.Errorf("reclaiming stuck jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reclaiming stuck jobs: %w", err)
	}
	return int(n), nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*jobs.Record, error) {
	var (
		rec                  jobs.Record
		payload              string
		status               string
		result, errMsg       sql.NullString
		createdAt, updatedAt string
		claimedAt            sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.Kind, &payload, &status, &result, &errMsg,
		&createdAt, &updatedAt, &claimedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	rec.Payload = json.RawMessage(payload)
	rec.Status = jobs.Status(status)
	if result.Valid {
		rec.Result = json.RawMessage(result.String)
	}
	rec.Error = errMsg.String

	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing job created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing job updated_at: %w", err)
	}
	if claimedAt.Valid {
		t, err := parseTime(claimedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing job claimed_at: %w", err)
		}
		rec.ClaimedAt = &t
	}
	return &rec, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
