package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/reconciler/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	tenantID := uuid.New()

	r := gin.New()
	r.Use(withJWTTenant(tenantID.String()), Tenant(TenantConfig{}), HTTPMetrics(provider.Meter("http.server"), nil))
	r.GET("/api/v1/customers/:id/balance", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/sale-returns/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{
		"/api/v1/customers/" + uuid.NewString() + "/balance",
		"/api/v1/customers/" + uuid.NewString() + "/balance",
		"/api/v1/sale-returns/" + uuid.NewString(),
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	byName := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}

	total, ok := byName["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
		tenant, _ := dp.Attributes.Value(telemetry.AttrTenantID)
		assert.Equal(t, tenantID.String(), tenant.AsString())
		counts[route.AsString()] += dp.Value
	}
	assert.Equal(t, int64(2), counts["/api/v1/customers/:id/balance"])
	assert.Equal(t, int64(1), counts["/api/v1/sale-returns/:id"])

	duration, ok := byName["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var observed uint64
	for _, dp := range duration.DataPoints {
		_, hasStatus := dp.Attributes.Value(attribute.Key("http.status_code"))
		assert.False(t, hasStatus, "duration must not carry status labels")
		observed += dp.Count
	}
	assert.Equal(t, uint64(3), observed)

	active, ok := byName["http_server_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range active.DataPoints {
		assert.Zero(t, dp.Value)
	}
}
