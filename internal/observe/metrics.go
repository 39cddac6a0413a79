// Package observe provides the OpenTelemetry metric instruments of voxedit.
//
// The engine records through a [Metrics] value built with [NewMetrics]. When
// no provider is configured the no-op provider is used, so recording is
// always safe. Tests should pass an SDK provider with a ManualReader.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all voxedit metrics.
const meterName = "github.com/ik5/voxedit"

// Metrics holds the engine's instruments. All fields are safe for concurrent
// use.
type Metrics struct {
	// OperationDuration tracks engine operation latency. Use with
	// attributes:
	//   attribute.String("op", ...), attribute.String("status", ...)
	OperationDuration metric.Float64Histogram

	// Operations counts engine operations, same attributes as
	// OperationDuration.
	Operations metric.Int64Counter

	// WaveformCache counts cache lookups. Use with attribute:
	//   attribute.String("result", "hit"|"miss")
	WaveformCache metric.Int64Counter
}

// durationBuckets are in seconds, spanning short edits to long re-encodes.
var durationBuckets = []float64{
	0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates the instruments from mp. A nil mp selects the no-op
// provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.OperationDuration, err = m.Float64Histogram("voxedit.operation.duration",
		metric.WithDescription("Latency of engine operations."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Operations, err = m.Int64Counter("voxedit.operations",
		metric.WithDescription("Engine operations by name and status."),
	); err != nil {
		return nil, err
	}
	if met.WaveformCache, err = m.Int64Counter("voxedit.waveform.cache",
		metric.WithDescription("Waveform cache lookups by result."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// Noop returns instruments that discard every measurement.
func Noop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// RecordOperation records one finished operation. A nil err counts as
// "ok", anything else as "error".
func (m *Metrics) RecordOperation(ctx context.Context, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	)
	m.OperationDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	m.Operations.Add(ctx, 1, attrs)
}

// RecordCache records a waveform cache lookup.
func (m *Metrics) RecordCache(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.WaveformCache.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
