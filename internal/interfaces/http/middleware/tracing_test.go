package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// withSpan starts a recording span the way otelgin would
func withSpan(tp *sdktrace.TracerProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), c.FullPath())
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status  int
		wantErr bool
		message string
	}{
		{http.StatusOK, false, ""},
		{http.StatusUnprocessableEntity, true, "Client Error"},
		{http.StatusConflict, true, "Conflict"},
		{http.StatusInternalServerError, true, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			recorder := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

			r := gin.New()
			r.Use(withSpan(tp), SpanErrorMarker())
			r.GET("/x", func(c *gin.Context) { c.Status(tt.status) })
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			if tt.wantErr {
				assert.Equal(t, codes.Error, spans[0].Status().Code)
				assert.Equal(t, tt.message, spans[0].Status().Description)
			} else {
				assert.Equal(t, codes.Unset, spans[0].Status().Code)
			}
		})
	}
}

func TestTracingAttributeInjector(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tenantID := uuid.New()

	r := gin.New()
	r.Use(RequestID(), withSpan(tp), func(c *gin.Context) {
		c.Set(JWTUserIDKey, "user-1")
		c.Next()
	}, withJWTTenant(tenantID.String()), Tenant(TenantConfig{}), TracingAttributeInjector())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-9")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := attribute.NewSet(spans[0].Attributes()...)
	v, _ := attrs.Value("request_id")
	assert.Equal(t, "req-9", v.AsString())
	v, _ = attrs.Value("tenant_id")
	assert.Equal(t, tenantID.String(), v.AsString())
	v, _ = attrs.Value("user_id")
	assert.Equal(t, "user-1", v.AsString())
}
