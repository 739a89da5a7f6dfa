// Package observability provides a metrics extension that tracks job
// and item lifecycle counts via OpenTelemetry.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/fanout/ext"
	"github.com/xraph/fanout/job"
)

// meterName is the instrumentation scope name for lifecycle metrics.
const meterName = "github.com/xraph/fanout/observability"

// Compile-time interface checks.
var (
	_ ext.Extension     = (*MetricsExtension)(nil)
	_ ext.JobCreated    = (*MetricsExtension)(nil)
	_ ext.JobCompleted  = (*MetricsExtension)(nil)
	_ ext.JobFailed     = (*MetricsExtension)(nil)
	_ ext.JobCanceled   = (*MetricsExtension)(nil)
	_ ext.JobSwept      = (*MetricsExtension)(nil)
	_ ext.ItemCompleted = (*MetricsExtension)(nil)
	_ ext.ItemFailed    = (*MetricsExtension)(nil)
)

// MetricsExtension records system-wide lifecycle metrics. Register it
// with the engine to automatically track creation rates, completion and
// failure counts, cancellations, sweeper removals, and per-item
// outcomes, all partitioned by operation tag.
type MetricsExtension struct {
	jobsCreated   metric.Int64Counter
	jobsCompleted metric.Int64Counter
	jobsFailed    metric.Int64Counter
	jobsCanceled  metric.Int64Counter
	jobsSwept     metric.Int64Counter
	itemsDone     metric.Int64Counter
	jobDuration   metric.Float64Histogram
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. With no provider configured the instruments are noops.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. Use this variant to inject a provider for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	m := &MetricsExtension{}

	// On error the OTel API returns noop instruments, so the extension
	// degrades gracefully.
	m.jobsCreated, _ = meter.Int64Counter("fanout.job.created",
		metric.WithDescription("Total number of jobs created"))
	m.jobsCompleted, _ = meter.Int64Counter("fanout.job.completed",
		metric.WithDescription("Total number of jobs that ran to completion"))
	m.jobsFailed, _ = meter.Int64Counter("fanout.job.failed",
		metric.WithDescription("Total number of jobs failed at the orchestration level"))
	m.jobsCanceled, _ = meter.Int64Counter("fanout.job.canceled",
		metric.WithDescription("Total number of jobs cancelled by their owner"))
	m.jobsSwept, _ = meter.Int64Counter("fanout.job.swept",
		metric.WithDescription("Total number of finished jobs removed by retention"))
	m.itemsDone, _ = meter.Int64Counter("fanout.item.processed",
		metric.WithDescription("Total number of items attempted"),
		metric.WithUnit("{item}"))
	m.jobDuration, _ = meter.Float64Histogram("fanout.job.duration",
		metric.WithDescription("Wall-clock duration of completed jobs in seconds"),
		metric.WithUnit("s"))

	return m
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability.metrics" }

func opAttrs(j *job.Job) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("operation", j.Operation))
}

// OnJobCreated implements ext.JobCreated.
func (m *MetricsExtension) OnJobCreated(ctx context.Context, j *job.Job) error {
	m.jobsCreated.Add(ctx, 1, opAttrs(j))
	return nil
}

// OnJobCompleted implements ext.JobCompleted.
func (m *MetricsExtension) OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error {
	m.jobsCompleted.Add(ctx, 1, opAttrs(j))
	m.jobDuration.Record(ctx, elapsed.Seconds(), opAttrs(j))
	return nil
}

// OnJobFailed implements ext.JobFailed.
func (m *MetricsExtension) OnJobFailed(ctx context.Context, j *job.Job, _ error) error {
	m.jobsFailed.Add(ctx, 1, opAttrs(j))
	return nil
}

// OnJobCanceled implements ext.JobCanceled.
func (m *MetricsExtension) OnJobCanceled(ctx context.Context, j *job.Job) error {
	m.jobsCanceled.Add(ctx, 1, opAttrs(j))
	return nil
}

// OnJobSwept implements ext.JobSwept.
func (m *MetricsExtension) OnJobSwept(ctx context.Context, j *job.Job) error {
	m.jobsSwept.Add(ctx, 1, opAttrs(j))
	return nil
}

// OnItemCompleted implements ext.ItemCompleted.
func (m *MetricsExtension) OnItemCompleted(ctx context.Context, j *job.Job, _ string, _ time.Duration) error {
	m.itemsDone.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", j.Operation),
		attribute.String("status", "ok"),
	))
	return nil
}

// OnItemFailed implements ext.ItemFailed.
func (m *MetricsExtension) OnItemFailed(ctx context.Context, j *job.Job, _ string, _ error) error {
	m.itemsDone.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", j.Operation),
		attribute.String("status", "error"),
	))
	return nil
}
