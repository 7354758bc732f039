package telemetry

import (
	"context"
	"errors"

	"github.com/erp/reconciler/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Providers bundles the trace, metric and log providers started for the process
type Providers struct {
	Tracer  *TracerProvider
	Meter   *MeterProvider
	Logs    *LoggerProvider
	Metrics *ReconciliationMetrics
}

// Setup starts every provider from the telemetry section of the config. With
// telemetry disabled all providers are no-ops and Metrics records into the
// global no-op meter.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	p := &Providers{}
	var err error

	export := ExportConfig{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		ServiceVersion:    cfg.ServiceVersion,
		Insecure:          cfg.Insecure,
	}

	if p.Tracer, err = NewTracerProvider(ctx, export, cfg.SamplingRatio, logger); err != nil {
		return nil, err
	}
	if p.Meter, err = NewMeterProvider(ctx, export, cfg.MetricsInterval, logger); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	if p.Logs, err = NewLoggerProvider(ctx, export, logger); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}

	p.Metrics, err = NewReconciliationMetricsFromProvider(p.Meter)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	return p, nil
}

// BridgeLogger returns base teed into the OTEL log pipeline, or base itself
// when OTEL logs are disabled.
func (p *Providers) BridgeLogger(base *zap.Logger, serviceName string, level zapcore.Level) *zap.Logger {
	if p.Logs == nil || !p.Logs.IsEnabled() {
		return base
	}
	core := zapcore.NewTee(base.Core(), p.Logs.Core(serviceName, level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Shutdown flushes and stops all started providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
