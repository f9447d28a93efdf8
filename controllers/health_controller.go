package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/vitalog/utils"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthController reports process and database liveness.
type HealthController struct {
	db      Pinger
	logger  *zap.Logger
	version string
}

// NewHealthController creates a new controller instance; db may be nil.
func NewHealthController(db Pinger, logger *zap.Logger, version string) *HealthController {
	return &HealthController{db: db, logger: logger, version: version}
}

func (h *HealthController) Health(ctx *gin.Context) {
	status, code := "ok", http.StatusOK
	database := "unknown"
	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(pingCtx); err != nil {
			h.logger.Warn("database ping failed", zap.Error(err), zap.String("trace_id", utils.TraceID(ctx)))
			status, code, database = "degraded", http.StatusServiceUnavailable, "down"
		} else {
			database = "up"
		}
	}
	utils.Respond(ctx, code, gin.H{
		"status":    status,
		"service":   "vitalog",
		"database":  database,
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	})
}
