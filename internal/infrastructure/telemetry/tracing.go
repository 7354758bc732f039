package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of service spans
const TracerName = "balance-reconciler"

// Span attribute keys. AttrTenantID is shared with metrics.
var (
	AttrCustomerID = attribute.Key("customer_id")
	AttrJobID      = attribute.Key("job_id")
	AttrJobType    = attribute.Key("job_type")
)

// StartSpan starts an internal span named component.operation on the global
// tracer provider. Pair it with EndSpan.
func StartSpan(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, component+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan marks the span failed when *errp is set, then ends it.
// Defer it with the address of a named error result.
func EndSpan(span trace.Span, errp *error) {
	if errp != nil && *errp != nil {
		span.RecordError(*errp)
		span.SetStatus(codes.Error, (*errp).Error())
	}
	span.End()
}

// TraceID returns the trace ID carried by ctx, or "" when there is none
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
