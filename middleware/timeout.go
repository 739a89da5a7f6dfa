package middleware

import (
	"context"
	"time"

	"github.com/xraph/fanout/job"
)

// Timeout returns middleware that bounds each item's execution with a
// context deadline. The engine never applies this itself — cancellation
// and latency bounding are the processor's responsibility — so this is
// the opt-in for callers that want hard bounding without building it
// into every processor. The processor must still honor ctx; a handler
// that ignores it will run to completion regardless.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, _ *job.Job, _ string, next Handler) (any, error) {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
