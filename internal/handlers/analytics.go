package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// AnalyticsHandler serves aggregate report counts.
type AnalyticsHandler struct {
	analytics Analytics
	logger    *zap.SugaredLogger
}

func NewAnalyticsHandler(analytics Analytics, logger *zap.SugaredLogger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// Heatmap handles GET /api/admin/heatmap?district=X. Without a district the
// counts are per district, otherwise per block within it.
func (h *AnalyticsHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	counts, err := h.analytics.Heatmap(r.Context(), actor, r.URL.Query().Get("district"))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}
