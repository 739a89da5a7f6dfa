// Package retention provides the background sweeper that removes
// finished jobs after a configurable age.
package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/fanout"
)

// Cleaner is the engine-side surface the sweeper drives.
type Cleaner interface {
	// Cleanup removes finished jobs older than maxAge and returns the
	// number removed.
	Cleanup(ctx context.Context, maxAge time.Duration) int
}

// Sweeper periodically removes finished jobs older than the retention
// age. Jobs still pending or running are never touched regardless of
// how long ago they started: a stuck job is a bug to diagnose, not
// data to silently discard.
type Sweeper struct {
	cleaner  Cleaner
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper that runs cleaner.Cleanup(maxAge) every
// interval once started.
func NewSweeper(cleaner Cleaner, interval, maxAge time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cleaner:  cleaner,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// NewSweeperFromConfig creates a sweeper from the retention settings in
// cfg: cleaner.Cleanup(cfg.RetentionAge) every cfg.SweepInterval.
func NewSweeperFromConfig(cleaner Cleaner, cfg fanout.Config, logger *slog.Logger) *Sweeper {
	return NewSweeper(cleaner, cfg.SweepInterval, cfg.RetentionAge, logger)
}

// Start launches the sweep loop. It returns immediately; calling Start
// on a running sweeper is a no-op.
func (s *Sweeper) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.running = true

	s.logger.Info("retention sweeper starting",
		slog.Duration("interval", s.interval),
		slog.Duration("max_age", s.maxAge),
	)

	s.wg.Add(1)
	go s.loop()

	return nil
}

// Stop signals the loop to exit and waits for it. Calling Stop on a
// stopped sweeper is a no-op.
func (s *Sweeper) Stop(_ context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	s.logger.Info("retention sweeper stopped")
	return nil
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if n := s.cleaner.Cleanup(context.Background(), s.maxAge); n > 0 {
				s.logger.Info("swept expired jobs", slog.Int("removed", n))
			}
		}
	}
}
