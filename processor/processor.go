// Package processor defines the unit-of-work contract consumed by the
// engine, the structured result convention, and concrete processors for
// the built-in operations (analyze, validate, export).
package processor

import "context"

// Processor performs the actual work for a single item. The engine
// calls Process at most once per entry of the job's item list (an item
// repeated in the list is processed once per occurrence) and treats a
// returned error as that item's failure — never as a job-level failure.
//
// Process may block (network, subprocess), but the engine imposes no
// per-item timeout of its own; implementations are responsible for
// bounding their own worst-case latency, typically by honoring ctx.
type Processor interface {
	// Name returns the operation tag this processor implements.
	Name() string

	// Process executes the unit of work for one item owned by ownerID
	// and returns the item's result value.
	Process(ctx context.Context, ownerID, itemID string) (any, error)
}

// Outcome is the optional convention for return values that carry an
// explicit success flag. When a processor's return value implements
// Outcome, that flag determines the item's recorded success; otherwise
// any normal return is a success.
type Outcome interface {
	Succeeded() bool
}

// Result is the standard Outcome implementation: an explicit success
// flag with either a value (success) or an error message (failure).
type Result struct {
	Success bool   `json:"success"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded implements Outcome.
func (r Result) Succeeded() bool { return r.Success }

// Func adapts a plain function to the Processor interface.
type Func struct {
	name string
	fn   func(ctx context.Context, ownerID, itemID string) (any, error)
}

// NewFunc wraps fn as a Processor with the given operation tag.
func NewFunc(name string, fn func(ctx context.Context, ownerID, itemID string) (any, error)) Func {
	return Func{name: name, fn: fn}
}

// Name returns the operation tag.
func (f Func) Name() string { return f.name }

// Process invokes the wrapped function.
func (f Func) Process(ctx context.Context, ownerID, itemID string) (any, error) {
	return f.fn(ctx, ownerID, itemID)
}
