package gate_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/fanout/gate"
)

func TestGate_NoLimitsAdmitsImmediately(t *testing.T) {
	g := gate.New()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for range 100 {
		if err := g.Acquire(ctx, "analyze"); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
	}
	// No slots to release, but Release must still be safe to call.
	for range 100 {
		g.Release("analyze")
	}
}

func TestGate_GlobalConcurrencyCap(t *testing.T) {
	const limit = 2
	g := gate.New(gate.Config{MaxConcurrency: limit})

	var inflight, peak atomic.Int64
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(context.Background(), "analyze"); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
			g.Release("analyze")
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > limit {
		t.Errorf("observed %d concurrent holders, want at most %d", p, limit)
	}
}

func TestGate_ScopedCapIndependentOfOtherOperations(t *testing.T) {
	g := gate.New(gate.Config{Operation: "export", MaxConcurrency: 1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := g.Acquire(ctx, "export"); err != nil {
		t.Fatalf("Acquire export: %v", err)
	}

	// The export slot is taken; other operations are unaffected.
	if err := g.Acquire(ctx, "analyze"); err != nil {
		t.Fatalf("Acquire analyze: %v", err)
	}

	// A second export acquire must block until the ctx gives up.
	blockedCtx, blockedCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer blockedCancel()
	if err := g.Acquire(blockedCtx, "export"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second export Acquire error = %v, want DeadlineExceeded", err)
	}

	g.Release("export")

	// The slot is free again.
	if err := g.Acquire(ctx, "export"); err != nil {
		t.Errorf("Acquire after Release: %v", err)
	}
}

func TestGate_AcquireHonorsContextCancellation(t *testing.T) {
	g := gate.New(gate.Config{MaxConcurrency: 1})

	if err := g.Acquire(context.Background(), "analyze"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Acquire(ctx, "analyze") }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire error = %v, want Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after context cancellation")
	}
}

func TestGate_ScopedTimeoutReturnsGlobalSlot(t *testing.T) {
	g := gate.New(
		gate.Config{MaxConcurrency: 2},
		gate.Config{Operation: "export", MaxConcurrency: 1},
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Hold the single scoped export slot plus one of two global slots.
	if err := g.Acquire(ctx, "export"); err != nil {
		t.Fatalf("Acquire export: %v", err)
	}

	// This acquire takes the last free global slot but times out on the
	// scoped one; it must roll the global slot back.
	blockedCtx, blockedCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer blockedCancel()
	if err := g.Acquire(blockedCtx, "export"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("blocked Acquire error = %v, want DeadlineExceeded", err)
	}

	// If the rollback happened, an unrelated operation can still get a
	// global slot without blocking.
	if err := g.Acquire(ctx, "analyze"); err != nil {
		t.Errorf("Acquire analyze after rollback: %v", err)
	}
}

func TestGate_RateLimitSpacesAdmissions(t *testing.T) {
	// 50/s with burst 1: the second acquire must wait roughly 20ms.
	g := gate.New(gate.Config{Operation: "analyze", RateLimit: 50, RateBurst: 1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := g.Acquire(ctx, "analyze"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	start := time.Now()
	if err := g.Acquire(ctx, "analyze"); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("second Acquire returned after %v, expected rate limiting to delay it", elapsed)
	}
}
