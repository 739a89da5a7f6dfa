package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/xraph/fanout/id"
	"github.com/xraph/fanout/job"
	"github.com/xraph/fanout/observability"
)

func setupExtension(t *testing.T) (*sdkmetric.ManualReader, *observability.MetricsExtension) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, observability.NewMetricsExtensionWithMeter(provider.Meter("test"))
}

func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s has data type %T, want Sum[int64]", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func testJob() *job.Job {
	return &job.Job{ID: id.NewJobID(), OwnerID: "7", Operation: "analyze"}
}

func TestMetricsExtension_JobCounters(t *testing.T) {
	reader, m := setupExtension(t)
	ctx := context.Background()
	j := testJob()

	if err := m.OnJobCreated(ctx, j); err != nil {
		t.Fatalf("OnJobCreated: %v", err)
	}
	if err := m.OnJobCompleted(ctx, j, 2*time.Second); err != nil {
		t.Fatalf("OnJobCompleted: %v", err)
	}
	if err := m.OnJobFailed(ctx, j, errors.New("x")); err != nil {
		t.Fatalf("OnJobFailed: %v", err)
	}
	if err := m.OnJobCanceled(ctx, j); err != nil {
		t.Fatalf("OnJobCanceled: %v", err)
	}
	if err := m.OnJobSwept(ctx, j); err != nil {
		t.Fatalf("OnJobSwept: %v", err)
	}

	for _, name := range []string{
		"fanout.job.created",
		"fanout.job.completed",
		"fanout.job.failed",
		"fanout.job.canceled",
		"fanout.job.swept",
	} {
		if got := sumOf(t, reader, name); got != 1 {
			t.Errorf("%s = %d, want 1", name, got)
		}
	}
}

func TestMetricsExtension_ItemStatusAttribute(t *testing.T) {
	reader, m := setupExtension(t)
	ctx := context.Background()
	j := testJob()

	_ = m.OnItemCompleted(ctx, j, "a", time.Millisecond)
	_ = m.OnItemCompleted(ctx, j, "b", time.Millisecond)
	_ = m.OnItemFailed(ctx, j, "c", errors.New("x"))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}

	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != "fanout.item.processed" {
				continue
			}
			for _, dp := range metric.Data.(metricdata.Sum[int64]).DataPoints {
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				counts[status.AsString()] += dp.Value
			}
		}
	}
	if counts["ok"] != 2 {
		t.Errorf("ok items = %d, want 2", counts["ok"])
	}
	if counts["error"] != 1 {
		t.Errorf("error items = %d, want 1", counts["error"])
	}
}
