package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys shared by metrics
var (
	AttrTenantID = attribute.Key("tenant_id")
	AttrOutcome  = attribute.Key("outcome")

	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")
)

// SmallDurationBuckets bound single-customer recalculations (seconds)
var SmallDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// HTTPDurationBuckets bound request latencies (seconds). The tail covers
// drift reports and XLSX exports of large tenants.
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Counter is a monotonically increasing int64 instrument
type Counter struct {
	metric.Int64Counter
}

// NewCounter creates a counter on meter
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", name, err)
	}
	return &Counter{Int64Counter: c}, nil
}

// Inc adds one
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Int64Counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// AddN adds n
func (c *Counter) AddN(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.Int64Counter.Add(ctx, n, metric.WithAttributes(attrs...))
}

// Histogram records durations in seconds
type Histogram struct {
	metric.Float64Histogram
}

// HistogramOpts describes a histogram; Boundaries may be empty
type HistogramOpts struct {
	Name        string
	Description string
	Unit        string
	Boundaries  []float64
}

// NewHistogram creates a histogram on meter
func NewHistogram(meter metric.Meter, opts HistogramOpts) (*Histogram, error) {
	hopts := []metric.Float64HistogramOption{metric.WithDescription(opts.Description), metric.WithUnit(opts.Unit)}
	if len(opts.Boundaries) > 0 {
		hopts = append(hopts, metric.WithExplicitBucketBoundaries(opts.Boundaries...))
	}
	h, err := meter.Float64Histogram(opts.Name, hopts...)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", opts.Name, err)
	}
	return &Histogram{Float64Histogram: h}, nil
}

// RecordDuration records d in seconds
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.Float64Histogram.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// Gauge records the latest int64 value
type Gauge struct {
	metric.Int64Gauge
}

// NewGauge creates a gauge on meter
func NewGauge(meter metric.Meter, name, description, unit string) (*Gauge, error) {
	g, err := meter.Int64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("gauge %s: %w", name, err)
	}
	return &Gauge{Int64Gauge: g}, nil
}

// Set records value
func (g *Gauge) Set(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	g.Int64Gauge.Record(ctx, value, metric.WithAttributes(attrs...))
}
