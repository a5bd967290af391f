package services

import (
	"context"
	"fmt"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/auth"
	"github.com/DeepakPatel004/CivicDesk/internal/metrics"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultOTPTTL is how long a signup code stays valid.
const DefaultOTPTTL = 10 * time.Minute

const otpMailSubject = "Verification OTP for CivicDesk"

// CitizenService handles citizen signup, email verification and login.
type CitizenService struct {
	citizens CitizenRepository
	tokens   *auth.TokenIssuer
	mailer   Mailer
	otpTTL   time.Duration
	now      Clock
	logger   *zap.SugaredLogger
}

// NewCitizenService creates a new citizen service
func NewCitizenService(citizens CitizenRepository, tokens *auth.TokenIssuer, mailer Mailer, otpTTL time.Duration, logger *zap.SugaredLogger) *CitizenService {
	if otpTTL <= 0 {
		otpTTL = DefaultOTPTTL
	}
	return &CitizenService{
		citizens: citizens,
		tokens:   tokens,
		mailer:   mailer,
		otpTTL:   otpTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Signup creates or refreshes an unverified account and mails a fresh OTP.
// Retrying signup before verification overwrites name, password and code.
func (s *CitizenService) Signup(ctx context.Context, req models.SignupRequest) (*models.CitizenSummary, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	existing, err := s.citizens.FindByEmail(ctx, req.Email)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Dependency("Server error during signup.", err)
	}
	if existing != nil && existing.Verified {
		return nil, apperr.Conflict("User with this email already exists and is verified.").WithCode("already_verified")
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return nil, apperr.Dependency("Server error during signup.", err)
	}
	otpHash, err := auth.HashOTP(code)
	if err != nil {
		return nil, apperr.Dependency("Server error during signup.", err)
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Dependency("Server error during signup.", err)
	}
	expires := s.now().Add(s.otpTTL)

	citizen := existing
	if citizen != nil {
		citizen.Name = req.Name
		citizen.PasswordHash = passwordHash
		citizen.OTPHash = &otpHash
		citizen.OTPExpiresAt = &expires
		if err := s.citizens.UpdatePending(ctx, citizen); err != nil {
			return nil, storageError(err, "Server error during signup.")
		}
	} else {
		citizen = &models.Citizen{
			ID:           uuid.New(),
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: passwordHash,
			OTPHash:      &otpHash,
			OTPExpiresAt: &expires,
		}
		if err := s.citizens.Create(ctx, citizen); err != nil {
			return nil, storageError(err, "Server error during signup.")
		}
	}

	body := fmt.Sprintf("<h1>Your OTP for registration is: %s</h1><p>It expires in %d minutes.</p>",
		code, int(s.otpTTL.Minutes()))
	if err := s.mailer.Send(ctx, req.Email, otpMailSubject, body); err != nil {
		s.logger.Errorw("Failed to deliver signup OTP", "citizen_id", citizen.ID, "error", err)
		return nil, apperr.Dependency("Failed to send verification email.", err)
	}

	s.logger.Infow("Signup OTP issued", "citizen_id", citizen.ID, "retry", existing != nil)
	return &models.CitizenSummary{ID: citizen.ID.String(), Email: citizen.Email}, nil
}

// VerifyOTP marks the account verified and logs the citizen in.
func (s *CitizenService) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	citizen, err := s.citizens.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			metrics.ObserveOTPVerification("unknown_account")
			return nil, apperr.NotFound("User not found.")
		}
		return nil, apperr.Dependency("Server error during OTP verification.", err)
	}
	if citizen.Verified {
		metrics.ObserveOTPVerification("already_verified")
		return nil, apperr.Conflict("User is already verified.").WithCode("already_verified")
	}
	if citizen.OTPHash == nil || citizen.OTPExpiresAt == nil || s.now().After(*citizen.OTPExpiresAt) {
		metrics.ObserveOTPVerification("expired")
		return nil, apperr.Validation("OTP has expired. Please sign up again.").WithCode("otp_expired")
	}
	if !auth.CheckOTP(*citizen.OTPHash, req.OTP) {
		metrics.ObserveOTPVerification("mismatch")
		return nil, apperr.Validation("Invalid OTP.").WithCode("otp_invalid")
	}

	if err := s.citizens.MarkVerified(ctx, citizen.ID, *citizen.OTPHash); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			metrics.ObserveOTPVerification("already_verified")
		}
		return nil, storageError(err, "Server error during OTP verification.")
	}
	token, err := s.tokens.IssueCitizen(citizen.ID)
	if err != nil {
		return nil, apperr.Dependency("Server error during OTP verification.", err)
	}

	metrics.ObserveOTPVerification("verified")
	s.logger.Infow("Citizen verified", "citizen_id", citizen.ID)
	return &models.AuthResult{
		Token: token,
		User:  &models.CitizenSummary{ID: citizen.ID.String(), Name: citizen.Name, Email: citizen.Email},
	}, nil
}

// Login authenticates a verified citizen by password. Unknown email and
// wrong password produce the same outcome; an unverified account with the
// right password gets its own message.
func (s *CitizenService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	citizen, err := s.citizens.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.logger.Infow("Login attempt for unknown citizen email")
			return nil, errInvalidCredentials
		}
		return nil, apperr.Dependency("Server error during login.", err)
	}
	if !auth.CheckPassword(citizen.PasswordHash, req.Password) {
		s.logger.Infow("Citizen login failed", "citizen_id", citizen.ID)
		return nil, errInvalidCredentials
	}
	if !citizen.Verified {
		return nil, apperr.Forbidden("Your email is not verified. Please complete the OTP verification process.").
			WithCode("email_unverified")
	}

	token, err := s.tokens.IssueCitizen(citizen.ID)
	if err != nil {
		return nil, apperr.Dependency("Server error during login.", err)
	}
	s.logger.Infow("Citizen logged in", "citizen_id", citizen.ID)
	return &models.AuthResult{
		Token: token,
		User:  &models.CitizenSummary{ID: citizen.ID.String(), Name: citizen.Name, Email: citizen.Email},
	}, nil
}

var errInvalidCredentials = apperr.Unauthenticated("Invalid credentials.").WithCode("invalid_credentials")

// storageError keeps categorized repository errors (conflict, not found)
// and wraps everything else as a dependency failure.
func storageError(err error, message string) error {
	switch apperr.KindOf(err) {
	case apperr.KindConflict, apperr.KindNotFound:
		return err
	}
	return apperr.Dependency(message, err)
}
