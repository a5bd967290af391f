// Package handlers contains HTTP request handlers for the CivicDesk API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a categorized error. Dependency failures are logged
// with their cause, which never reaches the client.
func respondError(w http.ResponseWriter, logger *zap.SugaredLogger, r *http.Request, err error) {
	appErr := apperr.As(err)
	if appErr.Kind == apperr.KindDependency {
		logger.Errorw("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	middleware.WriteError(w, appErr)
}

// decodeJSON reads a size-capped JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required.")
		}
		return apperr.Validation("Invalid request body.")
	}
	return nil
}

// uuidParam parses a path parameter as an id.
func uuidParam(r *http.Request, name, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid " + entity + " id.")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil {
		return v
	}
	return fallback
}

var errNoSession = apperr.Unauthenticated("No token, authorization denied.")

// currentActor returns the employee set by middleware.RequireEmployee.
func currentActor(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger) (access.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		respondError(w, logger, r, errNoSession)
	}
	return actor, ok
}

// currentCitizen returns the citizen set by middleware.RequireCitizen.
func currentCitizen(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger) (uuid.UUID, bool) {
	id, ok := middleware.CitizenID(r.Context())
	if !ok {
		respondError(w, logger, r, errNoSession)
	}
	return id, ok
}
