package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

const defaultActivityLimit = 100

// ActivityHandler serves the employee accountability log (Super Admin only).
type ActivityHandler struct {
	svc    ActivityLog
	logger *zap.SugaredLogger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(svc ActivityLog, logger *zap.SugaredLogger) *ActivityHandler {
	return &ActivityHandler{svc: svc, logger: logger}
}

// Recent handles GET /api/admin/activity/recent
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	logs, err := h.svc.Recent(r.Context(), actor, queryInt(r, "limit", defaultActivityLimit))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// ByReport handles GET /api/admin/activity/reports/{reportId}
func (h *ActivityHandler) ByReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	reportID, err := uuidParam(r, "reportId", "report")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	logs, err := h.svc.ByReport(r.Context(), actor, reportID, queryInt(r, "limit", defaultActivityLimit))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
