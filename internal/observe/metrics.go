// Package observe provides the OpenTelemetry metric instruments of the
// homophone service and the HTTP middleware that records request latency.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported to
// Prometheus by [InitProvider]. Tests should use [NewMetrics] with a
// ManualReader-backed provider to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/heartmarshall/homophones"

// Lookup status attribute values.
const (
	StatusFound    = "found"
	StatusNotFound = "not_found"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// ResolveDuration tracks single-word resolution latency. Use with
	//   attribute.String("algorithm", ...)
	ResolveDuration metric.Float64Histogram

	// Lookups counts resolved words. Use with
	//   attribute.String("status", "found" | "not_found")
	Lookups metric.Int64Counter

	// BatchSize tracks the number of entries per batch request.
	BatchSize metric.Int64Histogram

	// CacheHits counts results served from the result cache.
	CacheHits metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	//   attribute.String("method", ...), attribute.String("path", ...),
	//   attribute.Int("status", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// in-memory lookups and the HTTP requests wrapping them.
var latencyBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1, 0.5, 1,
}

var batchBuckets = []float64{1, 2, 5, 10, 20, 30, 40, 50, 100}

// NewMetrics creates a fully initialised [Metrics] struct using mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ResolveDuration, err = m.Float64Histogram("homophones.resolve.duration",
		metric.WithDescription("Latency of single-word homophone resolution by algorithm."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Lookups, err = m.Int64Counter("homophones.lookups",
		metric.WithDescription("Total resolved words by status."),
	); err != nil {
		return nil, err
	}
	if met.BatchSize, err = m.Int64Histogram("homophones.batch.size",
		metric.WithDescription("Number of entries per batch request."),
		metric.WithExplicitBucketBoundaries(batchBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CacheHits, err = m.Int64Counter("homophones.cache.hits",
		metric.WithDescription("Total results served from the result cache."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request latency by method, path and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, created on
// first call from [otel.GetMeterProvider]. Call it after [InitProvider].
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordResolve records one resolution: its latency under algorithm and a
// lookup counter increment with the found/not_found status.
func (m *Metrics) RecordResolve(ctx context.Context, algorithm string, found bool, d time.Duration) {
	m.ResolveDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("algorithm", algorithm)),
	)
	m.RecordLookup(ctx, found)
}

// RecordLookup increments the lookup counter.
func (m *Metrics) RecordLookup(ctx context.Context, found bool) {
	status := StatusNotFound
	if found {
		status = StatusFound
	}
	m.Lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordCacheHit increments the cache hit counter.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	m.CacheHits.Add(ctx, 1)
}

// RecordBatch records the size of a batch request.
func (m *Metrics) RecordBatch(ctx context.Context, size int) {
	m.BatchSize.Record(ctx, int64(size))
}
