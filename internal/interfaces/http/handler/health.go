package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store; *sql.DB satisfies it
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness, readiness and build info
type HealthHandler struct {
	BaseHandler
	db          Pinger
	name        string
	version     string
	startTime   time.Time
	pingTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, name, version string) *HealthHandler {
	return &HealthHandler{
		db:          db,
		name:        name,
		version:     version,
		startTime:   time.Now(),
		pingTimeout: 2 * time.Second,
	}
}

// HealthResponse reports process and dependency health
type HealthResponse struct {
	Status    string            `json:"status" example:"ok"`
	Name      string            `json:"name" example:"balance-reconciler"`
	Version   string            `json:"version" example:"1.0.0"`
	GoVersion string            `json:"go_version" example:"go1.25.5"`
	Uptime    string            `json:"uptime" example:"1h30m45s"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Live godoc
// @ID           getHealthLive
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Router       /health/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	h.Success(c, h.response("ok", nil))
}

// Ready godoc
// @ID           getHealthReady
// @Summary      Readiness probe
// @Description  Pings the database; returns 503 when it is unreachable
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    h.response("unavailable", map[string]string{"database": err.Error()}),
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeInternal,
				Message:   "Database unreachable",
				RequestID: middleware.GetRequestID(c),
				Timestamp: time.Now(),
			},
		})
		return
	}
	h.Success(c, h.response("ok", map[string]string{"database": "ok"}))
}

func (h *HealthHandler) response(status string, checks map[string]string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}
}
