// Package job defines the batch job record, its state machine, and the
// registry that owns the canonical records.
//
// # Job Record
//
// A [Job] embeds [fanout.Entity] for timestamps and carries a fixed item
// list, a progress counter, and a per-item result map. It progresses
// through a state machine:
//
//	pending → running → completed
//	pending → failed            (cancel before dispatch)
//	running → failed            (cancel or orchestration error)
//
// Job-level success means "ran to completion", not "all items
// succeeded": a completed job may carry any mix of per-item successes
// and failures in its Results map.
//
// # Registry
//
// [Registry] is the single source of truth. All mutation goes through
// its methods, which hold one lock across the read-modify-write of
// state, progress, and results; all reads return deep-copy snapshots.
// Repeated calls to [Registry.Get] without an intervening mutation
// return identical snapshots.
package job
