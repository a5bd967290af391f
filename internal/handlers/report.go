package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"go.uber.org/zap"
)

const multipartMemory = 8 << 20

// ReportHandler serves the citizen report endpoints.
type ReportHandler struct {
	reports        Reports
	maxUploadBytes int64
	logger         *zap.SugaredLogger
}

// NewReportHandler creates a new report handler. maxUploadMB caps the whole
// multipart request.
func NewReportHandler(reports Reports, maxUploadMB int, logger *zap.SugaredLogger) *ReportHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &ReportHandler{reports: reports, maxUploadBytes: int64(maxUploadMB) << 20, logger: logger}
}

// Submit handles POST /api/reports/submit (multipart/form-data).
// Fields: title, content, location (JSON) or district/block/locality, photo.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	citizenID, ok := currentCitizen(w, r, h.logger)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, h.logger, r, apperr.Validation(fmt.Sprintf("Upload exceeds %d MB.", h.maxUploadBytes>>20)))
			return
		}
		respondError(w, h.logger, r, apperr.Validation("Expected a multipart form."))
		return
	}
	defer r.MultipartForm.RemoveAll()

	loc, err := formLocation(r)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	sub := models.ReportSubmission{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		Location: loc,
	}

	var photo io.Reader
	file, _, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		respondError(w, h.logger, r, apperr.Validation("Could not read the photo."))
		return
	default:
		defer file.Close()
		photo, sub.PhotoContentType, err = sniffImage(file)
		if err != nil {
			respondError(w, h.logger, r, err)
			return
		}
	}

	report, err := h.reports.Submit(r.Context(), citizenID, sub, photo)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Report submitted successfully.",
		"report":  report,
	})
}

// formLocation accepts location as a JSON field or as flat fields.
func formLocation(r *http.Request) (models.Location, error) {
	var loc models.Location
	if raw := strings.TrimSpace(r.FormValue("location")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			return loc, apperr.Validation("Location must be a JSON object with district, block and locality.")
		}
		return loc, nil
	}
	loc.District = r.FormValue("district")
	loc.Block = r.FormValue("block")
	loc.Locality = r.FormValue("locality")
	return loc, nil
}

// sniffImage checks the leading bytes are an image and returns a reader
// that replays them.
func sniffImage(file multipart.File) (io.Reader, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", apperr.Validation("Could not read the photo.")
	}
	head = head[:n]
	if n == 0 {
		return nil, "", apperr.Validation("A photo is required.")
	}
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", apperr.Validation("Photo must be an image.")
	}
	return io.MultiReader(bytes.NewReader(head), file), contentType, nil
}

// Mine handles GET /api/reports/mine
func (h *ReportHandler) Mine(w http.ResponseWriter, r *http.Request) {
	citizenID, ok := currentCitizen(w, r, h.logger)
	if !ok {
		return
	}
	views, err := h.reports.ListMine(r.Context(), citizenID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// Feed handles GET /api/reports/feed?district=X
func (h *ReportHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentCitizen(w, r, h.logger); !ok {
		return
	}
	views, err := h.reports.Feed(r.Context(), r.URL.Query().Get("district"))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// Upvote handles POST /api/reports/{reportId}/upvote
func (h *ReportHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	citizenID, ok := currentCitizen(w, r, h.logger)
	if !ok {
		return
	}
	reportID, err := uuidParam(r, "reportId", "report")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	res, err := h.reports.ToggleUpvote(r.Context(), citizenID, reportID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
