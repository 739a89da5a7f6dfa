// Package middleware provides composable middleware for per-item
// execution. Middleware wraps processor calls synchronously and can
// modify execution (recover from panics, inject owner scope, log, add
// tracing, etc.).
package middleware

import (
	"context"

	"github.com/xraph/fanout/job"
)

// Handler is the terminal function that executes one item's unit of
// work and returns its result value.
type Handler func(ctx context.Context) (any, error)

// Middleware wraps a Handler with cross-cutting logic. It receives the
// current context, a snapshot of the job being executed, the item
// identifier, and the next handler to call. Middleware MUST call next
// to continue the chain (unless short-circuiting on error).
type Middleware func(ctx context.Context, j *job.Job, itemID string, next Handler) (any, error)

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, scope) executes as:
//
//	logging → recover → scope → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, j *job.Job, itemID string, next Handler) (any, error) {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) (any, error) {
				return mw(ctx, j, itemID, prev)
			}
		}
		return h(ctx)
	}
}
