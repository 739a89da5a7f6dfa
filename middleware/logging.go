package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/fanout/job"
)

// Logging returns middleware that logs item start and completion.
// Successful items log at Debug to keep large batches quiet; failures
// log at Error.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, j *job.Job, itemID string, next Handler) (any, error) {
		logger.Debug("item started",
			slog.String("job_id", j.ID.String()),
			slog.String("operation", j.Operation),
			slog.String("item_id", itemID),
		)

		start := time.Now()
		value, err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("item failed",
				slog.String("job_id", j.ID.String()),
				slog.String("operation", j.Operation),
				slog.String("item_id", itemID),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Debug("item completed",
				slog.String("job_id", j.ID.String()),
				slog.String("operation", j.Operation),
				slog.String("item_id", itemID),
				slog.Duration("elapsed", elapsed),
			)
		}

		return value, err
	}
}
