package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Manager owns the handler registry and the submission path. Workers take
// jobs from the shared Queue and dispatch through the manager's registry.
type Manager struct {
	queue  Queue
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewManager creates a manager around a queue.
func NewManager(queue Queue, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		queue:    queue,
		logger:   logger.With("component", "jobs"),
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler for its kind. Registering a duplicate kind
// replaces the previous handler.
func (m *Manager) Register(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[h.Kind()] = h
}

// Handler looks up the handler for a job kind.
func (m *Manager) Handler(kind string) (Handler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handlers[kind]
	return h, ok
}

// Enqueue creates a pending job record and persists it.
func (m *Manager) Enqueue(ctx context.Context, kind string, payload json.RawMessage) (*Record, error) {
	if _, ok := m.Handler(kind); !ok {
		return nil, fmt.Errorf("no handler registered for kind %q", kind)
	}
	rec := NewRecord(kind, payload)
	if err := m.queue.Enqueue(ctx, rec); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	m.logger.Info("job enqueued", "job_id", rec.ID, "kind", kind)
	return rec, nil
}

// Status returns the current record for a job.
func (m *Manager) Status(ctx context.Context, id string) (*Record, error) {
	return m.queue.Get(ctx, id)
}
