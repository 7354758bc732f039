package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/erp/reconciler/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	newRouter := func(db Pinger) *gin.Engine {
		h := NewHealthHandler(db, "balance-reconciler", "test")
		r := gin.New()
		r.GET("/health", h.Ready)
		r.GET("/health/live", h.Live)
		return r
	}

	t.Run("live never touches the database", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		w := testutil.Do(t, newRouter(mdb.SQL), http.MethodGet, "/health/live", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", testutil.Decode[HealthResponse](t, w).Data.Status)
		mdb.ExpectationsWereMet(t)
	})

	t.Run("ready pings the database", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		mdb.Mock.ExpectPing()

		w := testutil.Do(t, newRouter(mdb.SQL), http.MethodGet, "/health", nil)

		require.Equal(t, http.StatusOK, w.Code)
		env := testutil.Decode[HealthResponse](t, w)
		assert.Equal(t, "ok", env.Data.Checks["database"])
		assert.Equal(t, "balance-reconciler", env.Data.Name)
		mdb.ExpectationsWereMet(t)
	})

	t.Run("unreachable database", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		mdb.Mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		w := testutil.Do(t, newRouter(mdb.SQL), http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		env := testutil.Decode[HealthResponse](t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "unavailable", env.Data.Status)
	})
}
