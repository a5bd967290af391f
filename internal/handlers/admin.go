package handlers

import (
	"net/http"

	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"go.uber.org/zap"
)

// AdminHandler serves employee login, report triage and account management.
type AdminHandler struct {
	employees Employees
	reports   Reports
	logger    *zap.SugaredLogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(employees Employees, reports Reports, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{employees: employees, reports: reports, logger: logger}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	res, err := h.employees.Login(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	res.Message = "Logged in successfully."
	respondJSON(w, http.StatusOK, res)
}

// Reports handles GET /api/admin/reports
func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	views, err := h.reports.ListForEmployee(r.Context(), actor)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// Report handles GET /api/admin/reports/{reportId}
func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	reportID, err := uuidParam(r, "reportId", "report")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	view, err := h.reports.GetForEmployee(r.Context(), actor, reportID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// UpdateStatus handles PATCH /api/admin/reports/{reportId}/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	reportID, err := uuidParam(r, "reportId", "report")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req models.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	report, err := h.reports.UpdateStatus(r.Context(), actor, reportID, req.Status)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Report status updated.",
		"report":  report,
	})
}

// Register handles POST /api/admin/register (Super Admin)
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	var req models.RegisterEmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	employee, err := h.employees.Register(r.Context(), actor, req)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Employee registered successfully.",
		"employee": employee,
	})
}

// Employees handles GET /api/admin/employees (Super Admin)
func (h *AdminHandler) Employees(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	list, err := h.employees.List(r.Context(), actor)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// SetEmployeeStatus handles PATCH /api/admin/employees/{employeeId}/status (Super Admin)
func (h *AdminHandler) SetEmployeeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r, h.logger)
	if !ok {
		return
	}
	employeeID, err := uuidParam(r, "employeeId", "employee")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req models.EmployeeStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if req.IsActive == nil {
		respondError(w, h.logger, r, apperr.Validation("isActive is required."))
		return
	}
	employee, err := h.employees.SetActive(r.Context(), actor, employeeID, *req.IsActive)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, employee)
}
