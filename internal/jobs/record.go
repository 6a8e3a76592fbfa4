// Package jobs implements the asynchronous unit of work behind the tailoring
// pipeline: a persisted job record with an explicit state machine, and a
// polling worker loop that claims and executes jobs.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusClaimed   Status = "claimed"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record is a persisted job. The only legal transitions are
// pending -> claimed -> completed|failed; terminal records are immutable.
type Record struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	ClaimedAt *time.Time      `json:"claimed_at,omitempty"`
}

// NewRecord creates a pending job for submission.
func NewRecord(kind string, payload json.RawMessage) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Queue is the claimable work queue behind the worker loop. It is backed by
// the metadata store today; the atomic-claim contract is the only behavior
// the pipeline depends on, so it can be rebacked by a real queue without
// touching worker logic.
type Queue interface {
	// Enqueue persists a new pending job.
	Enqueue(ctx context.Context, rec *Record) error

	// Get returns a job by id, or store.ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// ListPending returns up to limit pending jobs, oldest first.
	ListPending(ctx context.Context, limit int) ([]*Record, error)

	// Claim atomically transitions a job from pending to claimed. It
	// returns false when another claimant won the race; that is not an
	// error.
	Claim(ctx context.Context, id string) (bool, error)

	// Complete transitions a claimed job to completed with its result.
	Complete(ctx context.Context, id string, result json.RawMessage) error

	// Fail transitions a claimed job to failed with an error message.
	Fail(ctx context.Context, id string, msg string) error

	// ReclaimStuck returns jobs claimed longer than the lease back to
	// pending, and reports how many were reclaimed. This recovers jobs
	// orphaned by a worker crash.
	ReclaimStuck(ctx context.Context, lease time.Duration) (int, error)
}

// Handler executes one kind of job.
type Handler interface {
	// Kind returns the job kind identifier this handler serves.
	Kind() string

	// Run executes the job and returns a JSON-serializable result. Run
	// must tolerate being invoked on a job that already performed partial
	// remote side effects: the engine is not transactional across the
	// document service.
	Run(ctx context.Context, rec *Record) (json.RawMessage, error)
}
