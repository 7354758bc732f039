// Package middleware provides the gin middleware chain of the reconciler API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName names the server spans
const DefaultServiceName = "balance-reconciler"

// Tracing wraps otelgin so every request gets a server span named after its
// route pattern.
func Tracing(serviceName string) gin.HandlerFunc {
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	return otelgin.Middleware(serviceName)
}

// TracingAttributeInjector copies request, tenant and user identifiers onto
// the current span. Place it after JWTAuth and Tenant.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}
		c.Next()
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if tenantID, ok := GetTenantUUID(c); ok {
		span.SetAttributes(attribute.String("tenant_id", tenantID.String()))
	}
	if userID := GetJWTUserID(c); userID != "" {
		span.SetAttributes(attribute.String("user_id", userID))
	}
}

// SpanErrorMarker sets an error status on spans of 4xx and 5xx responses
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, spanErrorMessage(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

func spanErrorMessage(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Forbidden"
	case status == http.StatusNotFound:
		return "Not Found"
	case status == http.StatusConflict:
		return "Conflict"
	default:
		return "Client Error"
	}
}
