// Package telemetry provides OpenTelemetry tracing, metrics and log export
// for the reconciliation engine.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	providerShutdownTimeout = 10 * time.Second
	defaultExportInterval   = time.Minute
)

// ExportConfig is the OTLP destination shared by the trace, metric and log
// pipelines.
type ExportConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	ServiceVersion    string
	Insecure          bool
}

func (c ExportConfig) resource() (*resource.Resource, error) {
	version := c.ServiceVersion
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(c.ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// lifecycle is the part every provider shares: an optional SDK provider that
// needs a bounded shutdown.
type lifecycle struct {
	signal string
	logger *zap.Logger
	stop   func(context.Context) error
}

// IsEnabled reports whether the signal is exported
func (l *lifecycle) IsEnabled() bool {
	return l.stop != nil
}

// Shutdown flushes pending data and stops the exporter
func (l *lifecycle) Shutdown(ctx context.Context) error {
	if l.stop == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, providerShutdownTimeout)
	defer cancel()
	if err := l.stop(ctx); err != nil {
		l.logger.Error("Telemetry provider shutdown failed", zap.String("signal", l.signal), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", l.signal, err)
	}
	l.logger.Info("Telemetry provider stopped", zap.String("signal", l.signal))
	return nil
}

// TracerProvider exports spans over OTLP/gRPC
type TracerProvider struct {
	lifecycle
	sdk *sdktrace.TracerProvider
}

// NewTracerProvider installs a batching OTLP tracer provider as the global
// one. Disabled config yields a provider that defers to the global no-op.
func NewTracerProvider(ctx context.Context, cfg ExportConfig, samplingRatio float64, logger *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{lifecycle: lifecycle{signal: "traces", logger: logger}}
	if !cfg.Enabled {
		logger.Info("Tracing disabled")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	tp.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(samplingRatio)),
	)
	tp.stop = tp.sdk.Shutdown
	otel.SetTracerProvider(tp.sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", samplingRatio),
	)
	return tp, nil
}

// samplerFor respects the parent's decision and samples root spans by ratio
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// Tracer returns a named tracer
func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.sdk == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.sdk.Tracer(name, opts...)
}

// ForceFlush exports buffered spans
func (tp *TracerProvider) ForceFlush(ctx context.Context) error {
	if tp.sdk == nil {
		return nil
	}
	return tp.sdk.ForceFlush(ctx)
}

// MeterProvider exports metrics periodically over OTLP/gRPC
type MeterProvider struct {
	lifecycle
	sdk *sdkmetric.MeterProvider
}

// NewMeterProvider installs a periodic OTLP meter provider as the global one.
// A zero interval exports every minute.
func NewMeterProvider(ctx context.Context, cfg ExportConfig, interval time.Duration, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{lifecycle: lifecycle{signal: "metrics", logger: logger}}
	if !cfg.Enabled {
		logger.Info("Metrics export disabled")
		return mp, nil
	}
	if interval <= 0 {
		interval = defaultExportInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	mp.sdk = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	mp.stop = mp.sdk.Shutdown
	otel.SetMeterProvider(mp.sdk)

	logger.Info("Metrics export enabled", zap.Duration("interval", interval))
	return mp, nil
}

// Meter returns a named meter, falling back to the global provider
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.sdk == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.sdk.Meter(name, opts...)
}

// LoggerProvider exports log records over OTLP/gRPC
type LoggerProvider struct {
	lifecycle
	sdk *sdklog.LoggerProvider
}

// NewLoggerProvider installs a batching OTLP logger provider as the global one
func NewLoggerProvider(ctx context.Context, cfg ExportConfig, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{lifecycle: lifecycle{signal: "logs", logger: logger}}
	if !cfg.Enabled {
		logger.Info("Log export disabled")
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	lp.sdk = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	lp.stop = lp.sdk.Shutdown
	global.SetLoggerProvider(lp.sdk)

	logger.Info("Log export enabled", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return lp, nil
}

// Core returns a zap core that forwards entries at or above level to the
// OTLP pipeline. It is a no-op core while log export is disabled.
func (lp *LoggerProvider) Core(name string, level zapcore.Level) zapcore.Core {
	if lp == nil || lp.sdk == nil {
		return zapcore.NewNopCore()
	}
	core := otelzap.NewCore(name, otelzap.WithLoggerProvider(lp.sdk))
	if level <= zapcore.DebugLevel {
		return core
	}
	return &levelFilterCore{Core: core, minLevel: level}
}

// levelFilterCore adds a minimum level to cores that have none
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.minLevel && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), minLevel: c.minLevel}
}
