package middleware

import (
	"context"

	"github.com/xraph/fanout/job"
	"github.com/xraph/fanout/scope"
)

// Scope returns middleware that attaches the job's owner identity to
// the context. Processors and item stores read it back with
// scope.Owner to authorize per-owner access.
func Scope() Middleware {
	return func(ctx context.Context, j *job.Job, _ string, next Handler) (any, error) {
		ctx = scope.WithOwner(ctx, j.OwnerID)
		return next(ctx)
	}
}
