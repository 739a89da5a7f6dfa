// Package engine implements bounded-parallel execution of batch jobs.
//
// The engine sits above the job registry and the processor contract:
// it owns no job state of its own. A Run call validates the job
// synchronously, then hands off to a background goroutine that fans the
// items out to at most W concurrent workers (W per run, default 3) and
// finalizes the record when every item has been attempted. The worker
// pool's lifetime is scoped to that one run — pools are never shared
// across jobs, so one slow batch cannot head-of-line block another.
//
// # Failure containment
//
// A processor error (or panic — the default middleware stack recovers
// it) is that item's failure: it is recorded in the result map and the
// remaining items proceed. Only a failure of the engine's own dispatch
// machinery flips the job to failed and sets its error message. Because
// Run is fire-and-forget, nothing is ever thrown at a caller who isn't
// watching; everything lands in the job record.
//
// # Building an Engine
//
//	eng := engine.New(reg,
//	    engine.WithConcurrency(3),
//	    engine.WithLogger(logger),
//	    engine.WithExtension(observability.NewMetricsExtension()),
//	    engine.WithGateConfig(gate.Config{MaxConcurrency: 32}),
//	)
package engine
