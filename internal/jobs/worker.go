package jobs

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultPollInterval is how often an idle worker checks for work.
	DefaultPollInterval = 3 * time.Second
	// DefaultBatchSize caps how many pending jobs one poll considers.
	DefaultBatchSize = 5
	// DefaultLease is how long a claim holds before the job is presumed
	// abandoned and returned to pending.
	DefaultLease = 15 * time.Minute
	// DefaultJobTimeout bounds a single handler run.
	DefaultJobTimeout = 10 * time.Minute

	// maxErrorLen bounds the stored failure message.
	maxErrorLen = 2000
)

// WorkerConfig configures a polling worker.
type WorkerConfig struct {
	Name         string
	PollInterval time.Duration
	BatchSize    int
	Lease        time.Duration
	JobTimeout   time.Duration
	Logger       *slog.Logger
}

// Worker polls the queue for pending jobs, claims them, and runs the
// registered handler. Multiple workers can share one queue; the atomic
// claim guarantees each job runs at most once per claim.
type Worker struct {
	manager *Manager
	cfg     WorkerConfig
	logger  *slog.Logger
}

// NewWorker creates a worker attached to a manager's queue and registry.
func NewWorker(manager *Manager, cfg WorkerConfig) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Lease <= 0 {
		cfg.Lease = DefaultLease
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "worker"
	}
	return &Worker{
		manager: manager,
		cfg:     cfg,
		logger:  logger.With("component", "worker", "worker", cfg.Name),
	}
}

// Start runs the polling loop until the context is cancelled.
// Run in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("worker started",
		"poll_interval", w.cfg.PollInterval, "batch_size", w.cfg.BatchSize)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		w.poll(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping")
			return
		case <-ticker.C:
		}
	}
}

// poll reclaims expired leases, then claims and runs up to BatchSize jobs.
func (w *Worker) poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if n, err := w.manager.queue.ReclaimStuck(ctx, w.cfg.Lease); err != nil {
		w.logger.Warn("reclaim failed", "error", err)
	} else if n > 0 {
		w.logger.Info("reclaimed stuck jobs", "count", n)
	}

	pending, err := w.manager.queue.ListPending(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Warn("list pending failed", "error", err)
		return
	}

	for _, rec := range pending {
		if ctx.Err() != nil {
			return
		}
		claimed, err := w.manager.queue.Claim(ctx, rec.ID)
		if err != nil {
			w.logger.Warn("claim failed", "job_id", rec.ID, "error", err)
			continue
		}
		if !claimed {
			// Another worker got there first.
			continue
		}
		w.run(ctx, rec)
	}
}

// run executes one claimed job and records the outcome.
func (w *Worker) run(ctx context.Context, rec *Record) {
	handler, ok := w.manager.Handler(rec.Kind)
	if !ok {
		w.fail(ctx, rec, "no handler registered for kind "+rec.Kind)
		return
	}

	w.logger.Info("job started", "job_id", rec.ID, "kind", rec.Kind)
	start := time.Now()

	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	result, err := handler.Run(jobCtx, rec)
	cancel()

	if err != nil {
		w.logger.Warn("job failed",
			"job_id", rec.ID, "kind", rec.Kind,
			"duration", time.Since(start), "error", err)
		w.fail(ctx, rec, err.Error())
		return
	}

	if err := w.manager.queue.Complete(ctx, rec.ID, result); err != nil {
		w.logger.Error("complete failed", "job_id", rec.ID, "error", err)
		return
	}
	w.logger.Info("job completed",
		"job_id", rec.ID, "kind", rec.Kind, "duration", time.Since(start))
}

func (w *Worker) fail(ctx context.Context, rec *Record, msg string) {
	if err := w.manager.queue.Fail(ctx, rec.ID, truncateError(msg)); err != nil {
		w.logger.Error("fail update failed", "job_id", rec.ID, "error", err)
	}
}

// truncateError bounds stored failure messages and strips newlines so
// they stay readable in status responses.
func truncateError(msg string) string {
	msg = strings.Join(strings.Fields(msg), " ")
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return msg
}
