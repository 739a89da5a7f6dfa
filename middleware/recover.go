package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/fanout/job"
)

// Recover returns middleware that recovers from panics in the handler
// chain. Panics are converted to errors — and therefore into ordinary
// per-item failures — and logged with a stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, j *job.Job, itemID string, next Handler) (value any, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("processor panicked",
					slog.String("job_id", j.ID.String()),
					slog.String("operation", j.Operation),
					slog.String("item_id", itemID),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				value = nil
				retErr = fmt.Errorf("panic processing item %s: %v", itemID, r)
			}
		}()
		return next(ctx)
	}
}
