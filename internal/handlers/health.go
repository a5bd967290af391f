package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"go.uber.org/zap"
)

const (
	version      = "1.0.0"
	probeTimeout = 2 * time.Second
)

var startTime = time.Now()

// HealthHandler provides health check endpoints
type HealthHandler struct {
	db     Pinger
	cache  Pinger
	logger *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler. cache may be nil when
// Redis is not configured.
func NewHealthHandler(db, cache Pinger, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, logger: logger}
}

// Check handles GET /api/health (liveness probe)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: version,
		Uptime:  time.Since(startTime).String(),
	})
}

// Ready handles GET /api/health/ready (readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	status := models.HealthStatus{
		Status:   "ready",
		Version:  version,
		Uptime:   time.Since(startTime).String(),
		Database: "connected",
	}
	code := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warnw("Readiness: database ping failed", "error", err)
		status.Database = "disconnected"
		status.Status = "not ready"
		code = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		status.Cache = "connected"
		if err := h.cache.Ping(ctx); err != nil {
			// The limiter falls back to memory, so Redis alone does not fail readiness.
			h.logger.Warnw("Readiness: redis ping failed", "error", err)
			status.Cache = "disconnected"
		}
	}
	respondJSON(w, code, status)
}
