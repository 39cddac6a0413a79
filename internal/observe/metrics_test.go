package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterValue(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: data is %T, want Sum[int64]", m.Name, m.Data)
	}
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			return dp.Value
		}
	}
	return 0
}

func TestRecordOperation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	start := time.Now()
	m.RecordOperation(ctx, "trim", start, nil)
	m.RecordOperation(ctx, "trim", start, nil)
	m.RecordOperation(ctx, "merge", start, errors.New("boom"))

	rm := collect(t, reader)
	ops := findMetric(rm, "voxedit.operations")
	if ops == nil {
		t.Fatal("voxedit.operations not found")
	}
	if got := counterValue(t, ops, "status", "ok"); got != 2 {
		t.Errorf("ok operations = %d, want 2", got)
	}
	if got := counterValue(t, ops, "status", "error"); got != 1 {
		t.Errorf("failed operations = %d, want 1", got)
	}

	dur := findMetric(rm, "voxedit.operation.duration")
	if dur == nil {
		t.Fatal("voxedit.operation.duration not found")
	}
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration data is %T", dur.Data)
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("histogram count = %d, want 3", count)
	}
}

func TestRecordCache(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCache(ctx, true)
	m.RecordCache(ctx, false)
	m.RecordCache(ctx, false)

	cache := findMetric(collect(t, reader), "voxedit.waveform.cache")
	if cache == nil {
		t.Fatal("voxedit.waveform.cache not found")
	}
	if got := counterValue(t, cache, "result", "hit"); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
	if got := counterValue(t, cache, "result", "miss"); got != 2 {
		t.Errorf("misses = %d, want 2", got)
	}
}

func TestNoop(t *testing.T) {
	m := Noop()
	if m == nil {
		t.Fatal("Noop() returned nil")
	}
	m.RecordOperation(context.Background(), "x", time.Now(), nil)
	m.RecordCache(context.Background(), true)

	if _, err := NewMetrics(nil); err != nil {
		t.Errorf("NewMetrics(nil) error = %v", err)
	}
}
