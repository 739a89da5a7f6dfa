package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/fanout/job"
)

// tracerName is the instrumentation scope name for fanout tracing.
const tracerName = "github.com/xraph/fanout"

// Tracing returns middleware that wraps item execution in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a
// pass-through with zero overhead.
//
// Span attributes include: fanout.job.id, fanout.operation,
// fanout.owner_id, fanout.item_id. On error, the span status is set to
// codes.Error with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided
// tracer. This variant allows injecting a specific TracerProvider for
// testing or when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, j *job.Job, itemID string, next Handler) (any, error) {
		ctx, span := tracer.Start(ctx, "fanout.item.process",
			trace.WithAttributes(
				attribute.String("fanout.job.id", j.ID.String()),
				attribute.String("fanout.operation", j.Operation),
				attribute.String("fanout.owner_id", j.OwnerID),
				attribute.String("fanout.item_id", itemID),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		value, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return value, err
	}
}
