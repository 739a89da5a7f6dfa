package job

import (
	"time"

	"github.com/xraph/fanout"
	"github.com/xraph/fanout/id"
)

// State represents the lifecycle state of a job.
type State string

const (
	// StatePending means the job has been created but not yet dispatched.
	StatePending State = "pending"
	// StateRunning means the engine is currently fanning out the job's items.
	StateRunning State = "running"
	// StateCompleted means every item has been attempted.
	StateCompleted State = "completed"
	// StateFailed means the job was cancelled or hit an orchestration error.
	StateFailed State = "failed"
)

// Terminal reports whether s is a final state. Terminal jobs accept no
// further transitions; only the retention sweeper may remove them.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// ItemResult records the outcome of one item's unit of work. Exactly one
// of Value and Error is meaningful: success carries a value, failure
// carries an error message.
type ItemResult struct {
	Success bool   `json:"success"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Job represents one batch request: a fixed, ordered list of item
// identifiers to process under a single operation tag for one owner.
//
// The registry owns the canonical record; everything handed to callers
// is a deep copy. Progress and Results advance together under the
// registry lock, so a snapshot never shows one ahead of the other.
type Job struct {
	fanout.Entity

	ID        id.JobID `json:"id"`
	OwnerID   string   `json:"owner_id"`
	Operation string   `json:"operation"`

	// Items is fixed at creation and never mutated afterwards.
	Items []string `json:"items"`

	State State `json:"state"`

	// Total equals len(Items) for the lifetime of the record.
	Total int `json:"total"`

	// Progress counts items whose processing has concluded, success or
	// failure. 0 <= Progress <= Total, monotonically non-decreasing.
	Progress int `json:"progress"`

	// Results holds an entry for an item if and only if its unit of
	// work has been attempted. Insertion order is non-deterministic.
	Results map[string]ItemResult `json:"results"`

	// ErrorMessage is set only for job-level failure (cancellation or
	// an orchestration error), never for individual item failures.
	ErrorMessage string `json:"error_message,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy of the job. Mutating the copy (including
// its Items slice and Results map) never affects the original.
func (j *Job) Clone() *Job {
	cp := *j

	cp.Items = make([]string, len(j.Items))
	copy(cp.Items, j.Items)

	cp.Results = make(map[string]ItemResult, len(j.Results))
	for k, v := range j.Results {
		cp.Results[k] = v
	}

	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}

	return &cp
}
