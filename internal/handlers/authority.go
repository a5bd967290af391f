package handlers

import (
	"net/http"

	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"go.uber.org/zap"
)

// AuthorityHandler manages the locality authority directory.
type AuthorityHandler struct {
	authorities Authorities
	logger      *zap.SugaredLogger
}

func NewAuthorityHandler(authorities Authorities, logger *zap.SugaredLogger) *AuthorityHandler {
	return &AuthorityHandler{authorities: authorities, logger: logger}
}

// Create handles POST /api/admin/authorities
func (h *AuthorityHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	var req models.CreateAuthorityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	a, err := h.authorities.Create(r.Context(), actor, req)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// List handles GET /api/admin/authorities
func (h *AuthorityHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	list, err := h.authorities.List(r.Context(), actor)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Delete handles DELETE /api/admin/authorities/{authorityId}
func (h *AuthorityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	id, err := uuidParam(r, "authorityId", "authority")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.authorities.Delete(r.Context(), actor, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Authority deleted."})
}
