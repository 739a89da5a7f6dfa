package job

import (
	"sync"
	"time"

	"github.com/xraph/fanout"
	"github.com/xraph/fanout/id"
)

// CancelMessage is recorded as the job-level error when a job is
// cancelled through the registry.
const CancelMessage = "canceled by user"

// Registry owns the canonical job records. It is the single source of
// truth: the engine mutates records only through registry methods, and
// every read returns a deep-copy snapshot taken under the lock, so
// concurrent readers never observe a torn update (progress incremented
// without the matching results entry, or vice versa).
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty job registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
	}
}

// Create allocates a new pending job for the given owner, operation tag,
// and item list. The item slice is copied; an empty list is legal and
// yields an immediately-completable job. Safe under concurrent calls:
// IDs are UUIDv7-based and never collide.
func (r *Registry) Create(ownerID, operation string, items []string) *Job {
	j := &Job{
		Entity:    fanout.NewEntity(),
		ID:        id.NewJobID(),
		OwnerID:   ownerID,
		Operation: operation,
		Items:     append([]string(nil), items...),
		State:     StatePending,
		Total:     len(items),
		Results:   make(map[string]ItemResult),
	}

	r.mu.Lock()
	r.jobs[j.ID.String()] = j
	r.mu.Unlock()

	return j.Clone()
}

// Get returns a consistent snapshot of the job, or false for unknown or
// already-swept IDs. It never returns a partially-updated record.
func (r *Registry) Get(jobID id.JobID) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[jobID.String()]
	if !ok {
		return nil, false
	}
	return j.Clone(), true
}

// StateOf returns the current state of the job without copying the
// whole record. Used by the dispatch loop to stop handing out items
// once a job leaves the running state.
func (r *Registry) StateOf(jobID id.JobID) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[jobID.String()]
	if !ok {
		return "", false
	}
	return j.State, true
}

// List returns snapshots of all records in unspecified order.
func (r *Registry) List() []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Clone())
	}
	return out
}

// Len returns the number of records currently held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// Delete removes a record. Returns false if the ID is unknown.
func (r *Registry) Delete(jobID id.JobID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := jobID.String()
	if _, ok := r.jobs[key]; !ok {
		return false
	}
	delete(r.jobs, key)
	return true
}

// Start transitions a pending job to running and stamps StartedAt.
// Returns fanout.ErrJobNotFound for unknown IDs and
// fanout.ErrInvalidState if the job is not pending.
func (r *Registry) Start(jobID id.JobID) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID.String()]
	if !ok {
		return nil, fanout.ErrJobNotFound
	}
	if j.State != StatePending {
		return nil, fanout.ErrInvalidState
	}

	now := time.Now().UTC()
	j.State = StateRunning
	j.StartedAt = &now
	j.UpdatedAt = now

	return j.Clone(), nil
}

// RecordResult upserts the result entry for an item and increments
// progress as a single atomic step. Returns false (no-op) if the job
// has been deleted or already completed.
//
// The item list may legally contain duplicates, so a repeated key
// overwrites the entry and still advances progress: every dispatched
// item counts toward completion, and a completed job always reaches
// progress == total.
//
// Recording against a failed job is allowed: a cancel is only a status
// flip, and items already in flight at that moment still conclude and
// write their results afterwards.
func (r *Registry) RecordResult(jobID id.JobID, itemID string, res ItemResult) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID.String()]
	if !ok || j.State == StateCompleted {
		return false
	}

	j.Results[itemID] = res
	j.Progress++
	j.UpdatedAt = time.Now().UTC()

	return true
}

// Complete transitions a running job to completed and stamps
// CompletedAt. Returns false if the job is missing or not running
// (e.g. it was cancelled mid-run).
func (r *Registry) Complete(jobID id.JobID) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID.String()]
	if !ok || j.State != StateRunning {
		return nil, false
	}

	now := time.Now().UTC()
	j.State = StateCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now

	return j.Clone(), true
}

// Fail transitions a pending or running job to failed with the given
// orchestration-level error message. Returns false if the job is
// missing or already terminal.
func (r *Registry) Fail(jobID id.JobID, message string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID.String()]
	if !ok || j.State.Terminal() {
		return nil, false
	}

	now := time.Now().UTC()
	j.State = StateFailed
	j.ErrorMessage = message
	j.CompletedAt = &now
	j.UpdatedAt = now

	return j.Clone(), true
}

// Cancel marks a pending or running job as failed with CancelMessage.
// Returns false if the job does not exist or is already terminal.
// Cancellation is advisory: it does not interrupt in-flight items.
func (r *Registry) Cancel(jobID id.JobID) (*Job, bool) {
	return r.Fail(jobID, CancelMessage)
}

// Sweep removes every terminal record whose CompletedAt is older than
// maxAge and returns snapshots of the removed jobs. Pending and running
// records are never swept regardless of age: a stuck job is a bug to
// diagnose, not data to silently discard.
func (r *Registry) Sweep(maxAge time.Duration) []*Job {
	cutoff := time.Now().UTC().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*Job
	for key, j := range r.jobs {
		if !j.State.Terminal() || j.CompletedAt == nil {
			continue
		}
		if j.CompletedAt.After(cutoff) {
			continue
		}
		removed = append(removed, j.Clone())
		delete(r.jobs, key)
	}
	return removed
}
