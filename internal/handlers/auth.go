package handlers

import (
	"net/http"

	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"go.uber.org/zap"
)

// AuthHandler serves citizen signup, OTP verification and login.
type AuthHandler struct {
	citizens CitizenAuth
	logger   *zap.SugaredLogger
}

// NewAuthHandler creates a new citizen auth handler
func NewAuthHandler(citizens CitizenAuth, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{citizens: citizens, logger: logger}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	user, err := h.citizens.Signup(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "OTP sent to your email. Please verify to complete registration.",
		"user":    user,
	})
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	res, err := h.citizens.VerifyOTP(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	res.Message = "Email verified successfully."
	respondJSON(w, http.StatusOK, res)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	res, err := h.citizens.Login(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	res.Message = "Logged in successfully."
	respondJSON(w, http.StatusOK, res)
}
