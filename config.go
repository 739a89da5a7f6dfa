package fanout

import "time"

// Config holds configuration for the execution engine and its
// background maintenance.
type Config struct {
	// Concurrency is the maximum number of items processed concurrently
	// within a single job run. Deliberately small by default: it bounds
	// resource usage per run and keeps progress observable even when
	// individual items are cheap.
	Concurrency int

	// RetentionAge is how long finished jobs are kept before the
	// retention sweeper removes them.
	RetentionAge time.Duration

	// SweepInterval is how often the retention sweeper scans for
	// expired jobs.
	SweepInterval time.Duration

	// ShutdownTimeout is the maximum time to wait for in-flight runs
	// during graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:     3,
		RetentionAge:    24 * time.Hour,
		SweepInterval:   1 * time.Hour,
		ShutdownTimeout: 30 * time.Second,
	}
}
