// Package gate provides engine-wide and per-operation admission
// control: a hard cap on items executing concurrently across all jobs,
// and token-bucket rate limiting per operation tag. The per-run worker
// pool already bounds each job on its own; the gate is the cross-job
// cap for deployments where many jobs run at once.
package gate

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Config defines limits for one operation tag. A Config with an empty
// Operation applies engine-wide, across all operations.
type Config struct {
	// Operation is the operation tag these limits apply to.
	// Empty means engine-wide.
	Operation string

	// MaxConcurrency limits how many items with this tag may execute
	// simultaneously. Zero means no concurrency limit.
	MaxConcurrency int

	// RateLimit is the maximum sustained item starts per second.
	// Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the burst size for the token-bucket rate limiter.
	// Defaults to 1 if RateLimit is set but RateBurst is zero.
	RateBurst int
}

// state tracks runtime admission state for one operation tag.
type state struct {
	limiter *rate.Limiter
	slots   chan struct{}
}

func newState(cfg Config) *state {
	s := &state{}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.MaxConcurrency > 0 {
		s.slots = make(chan struct{}, cfg.MaxConcurrency)
	}
	return s
}

// Gate controls admission of item executions. Acquire blocks the
// calling worker until the item is admitted (workers are already
// bounded per run, so blocking here cannot pile up unbounded
// goroutines). Safe for concurrent use.
type Gate struct {
	mu     sync.Mutex
	states map[string]*state
}

// New creates a Gate with the given configurations. Operations not
// listed have no limits of their own; the engine-wide Config (empty
// Operation), if present, still applies to them.
func New(configs ...Config) *Gate {
	g := &Gate{states: make(map[string]*state, len(configs))}
	for _, cfg := range configs {
		g.states[cfg.Operation] = newState(cfg)
	}
	return g
}

// Acquire admits one item execution for the given operation, blocking
// until rate and concurrency limits allow it or ctx is done. The caller
// MUST call Release with the same operation when the item concludes.
func (g *Gate) Acquire(ctx context.Context, operation string) error {
	global, scoped := g.lookup(operation)

	// Rate limits first: a slot must not be held while waiting on tokens.
	if global != nil && global.limiter != nil {
		if err := global.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if scoped != nil && scoped.limiter != nil {
		if err := scoped.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if global != nil && global.slots != nil {
		select {
		case global.slots <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if scoped != nil && scoped.slots != nil {
		select {
		case scoped.slots <- struct{}{}:
		case <-ctx.Done():
			if global != nil && global.slots != nil {
				<-global.slots
			}
			return ctx.Err()
		}
	}

	return nil
}

// Release returns the slots taken by a previous successful Acquire.
func (g *Gate) Release(operation string) {
	global, scoped := g.lookup(operation)

	if scoped != nil && scoped.slots != nil {
		<-scoped.slots
	}
	if global != nil && global.slots != nil {
		<-global.slots
	}
}

func (g *Gate) lookup(operation string) (global, scoped *state) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[""], g.states[operation]
}
