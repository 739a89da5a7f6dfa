// Package fanout provides an in-process batch job execution engine.
//
// A caller submits a named collection of work items (identified by an
// owner and an operation tag) and immediately receives an opaque job ID.
// The engine fans the items out to a bounded pool of workers in the
// background, records a per-item success/failure result set, and drives
// the job through an explicit state machine:
//
//	pending → running → completed
//	pending → failed          (cancelled before dispatch)
//	running → failed          (cancelled or orchestration error)
//
// Callers poll the job registry at any time for a race-free snapshot of
// progress and results. A job reaching "completed" means every item was
// attempted; individual item failures are recorded in the result set and
// never fail the job as a whole.
//
// # Quick Start
//
//	reg := job.NewRegistry()
//	eng := engine.New(reg, engine.WithConcurrency(3))
//
//	j, _ := eng.CreateJob(ctx, "7", "analyze", []string{"a.py", "b.py"})
//	_ = eng.Run(ctx, j.ID, processor.NewAnalyze(store))
//
//	// ... later, from any goroutine:
//	snap, ok := eng.Job(j.ID)
//
// All state is held in memory for the lifetime of the process. A restart
// loses all job history; callers needing durability must layer it on
// outside the engine.
package fanout
