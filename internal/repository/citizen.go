package repository

import (
	"context"

	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
)

const citizenColumns = `id, email, name, password_hash, is_verified, otp_hash, otp_expires_at, created_at, updated_at`

// CitizenStore persists citizens and their submission ledger.
type CitizenStore struct {
	db DB
}

func NewCitizenStore(db DB) *CitizenStore {
	return &CitizenStore{db: db}
}

func (s *CitizenStore) FindByEmail(ctx context.Context, email string) (*models.Citizen, error) {
	return s.find(ctx, `SELECT `+citizenColumns+` FROM citizens WHERE email = $1`, email)
}

func (s *CitizenStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Citizen, error) {
	return s.find(ctx, `SELECT `+citizenColumns+` FROM citizens WHERE id = $1`, id)
}

func (s *CitizenStore) find(ctx context.Context, query string, arg any) (*models.Citizen, error) {
	var c models.Citizen
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&c.ID,
		&c.Email,
		&c.Name,
		&c.PasswordHash,
		&c.Verified,
		&c.OTPHash,
		&c.OTPExpiresAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "citizen")
	}

	ledger, err := s.ledger(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Reports = ledger
	return &c, nil
}

func (s *CitizenStore) ledger(ctx context.Context, citizenID uuid.UUID) ([]models.LedgerEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT report_id, submitted_at
		FROM citizen_report_ledger
		WHERE citizen_id = $1
		ORDER BY submitted_at
	`, citizenID)
	if err != nil {
		return nil, mapError(err, "citizen ledger")
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ReportID, &e.SubmittedAt); err != nil {
			return nil, mapError(err, "citizen ledger")
		}
		entries = append(entries, e)
	}
	return entries, mapError(rows.Err(), "citizen ledger")
}

func (s *CitizenStore) Create(ctx context.Context, c *models.Citizen) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO citizens (id, email, name, password_hash, is_verified, otp_hash, otp_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, c.ID, c.Email, c.Name, c.PasswordHash, c.Verified, c.OTPHash, c.OTPExpiresAt).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapError(err, "citizen")
}

// UpdatePending refreshes the signup fields of an account that is still
// unverified.
func (s *CitizenStore) UpdatePending(ctx context.Context, c *models.Citizen) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE citizens
		SET name = $2, password_hash = $3, otp_hash = $4, otp_expires_at = $5, updated_at = NOW()
		WHERE id = $1 AND is_verified = FALSE
	`, c.ID, c.Name, c.PasswordHash, c.OTPHash, c.OTPExpiresAt)
	if err != nil {
		return mapError(err, "citizen")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("User with this email already exists and is verified.").WithCode("already_verified")
	}
	return nil
}

// MarkVerified consumes the code the caller checked. A concurrent verify or
// a signup retry that replaced the code leaves zero rows to update.
func (s *CitizenStore) MarkVerified(ctx context.Context, id uuid.UUID, otpHash string) error {
	tag, err := s.db.Exec(ctx, markVerifiedSQL, id, otpHash)
	if err != nil {
		return mapError(err, "citizen")
	}
	if tag.RowsAffected() == 0 {
		return errVerifyLost
	}
	return nil
}

const markVerifiedSQL = `
	UPDATE citizens
	SET is_verified = TRUE, otp_hash = NULL, otp_expires_at = NULL, updated_at = NOW()
	WHERE id = $1 AND is_verified = FALSE AND otp_hash = $2
`

var errVerifyLost = apperr.Conflict("User is already verified.").WithCode("already_verified")

func (s *CitizenStore) AppendLedger(ctx context.Context, citizenID uuid.UUID, entry models.LedgerEntry) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO citizen_report_ledger (citizen_id, report_id, submitted_at)
		VALUES ($1, $2, $3)
	`, citizenID, entry.ReportID, entry.SubmittedAt)
	return mapError(err, "citizen ledger")
}
