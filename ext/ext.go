// Package ext defines the extension system for fanout.
// Extensions are notified of lifecycle events (job created, item
// completed, job failed, etc.) and can react to them — logging,
// metrics, audit, etc.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import (
	"context"
	"time"

	"github.com/xraph/fanout/job"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Job lifecycle hooks
// ──────────────────────────────────────────────────

// JobCreated is called after a job record is created in the registry.
type JobCreated interface {
	OnJobCreated(ctx context.Context, j *job.Job) error
}

// JobStarted is called when the engine begins dispatching a job.
type JobStarted interface {
	OnJobStarted(ctx context.Context, j *job.Job) error
}

// JobCompleted is called after every item of a job has been attempted.
type JobCompleted interface {
	OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error
}

// JobFailed is called when a job fails at the orchestration level.
type JobFailed interface {
	OnJobFailed(ctx context.Context, j *job.Job, err error) error
}

// JobCanceled is called when a job is cancelled by its owner.
type JobCanceled interface {
	OnJobCanceled(ctx context.Context, j *job.Job) error
}

// JobSwept is called when the retention sweeper removes a finished job.
type JobSwept interface {
	OnJobSwept(ctx context.Context, j *job.Job) error
}

// ──────────────────────────────────────────────────
// Item lifecycle hooks
// ──────────────────────────────────────────────────

// ItemCompleted is called after an item's unit of work succeeds.
type ItemCompleted interface {
	OnItemCompleted(ctx context.Context, j *job.Job, itemID string, elapsed time.Duration) error
}

// ItemFailed is called after an item's unit of work fails.
type ItemFailed interface {
	OnItemFailed(ctx context.Context, j *job.Job, itemID string, err error) error
}

// ──────────────────────────────────────────────────
// Other lifecycle hooks
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
