// Package services contains business logic layers.
// Services are called by handlers and reach storage through the repository
// interfaces declared here; internal/repository provides the Postgres
// implementations.
package services

import (
	"context"
	"io"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
)

// Repositories return apperr NotFound when a lookup misses and apperr
// Conflict when a uniqueness constraint fires. Anything else is a
// dependency failure.

// CitizenRepository stores citizen accounts and their submission ledger.
type CitizenRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Citizen, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Citizen, error)
	Create(ctx context.Context, c *models.Citizen) error
	UpdatePending(ctx context.Context, c *models.Citizen) error
	// MarkVerified succeeds only while the account is unverified and still
	// holds otpHash; otherwise it returns Conflict "already_verified".
	MarkVerified(ctx context.Context, id uuid.UUID, otpHash string) error
	AppendLedger(ctx context.Context, citizenID uuid.UUID, entry models.LedgerEntry) error
}

// EmployeeRepository stores employee accounts.
type EmployeeRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	Create(ctx context.Context, e *models.Employee) error
	List(ctx context.Context) ([]models.Employee, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Employee, error)
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

// ReportRepository stores reports.
type ReportRepository interface {
	Create(ctx context.Context, r *models.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	FindView(ctx context.Context, id uuid.UUID) (*models.ReportView, error)
	// List returns matching reports newest first, joined with the submitter.
	List(ctx context.Context, filter models.ReportFilter) ([]models.ReportView, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus) (*models.Report, error)
	// ToggleUpvote atomically removes citizenID from the upvote set if
	// present, otherwise adds it.
	ToggleUpvote(ctx context.Context, reportID, citizenID uuid.UUID) (upvoted bool, count int, err error)
	CountByDistrict(ctx context.Context) ([]models.AreaCount, error)
	CountByBlock(ctx context.Context, district string) ([]models.AreaCount, error)
}

// AuthorityRepository stores authority contacts.
type AuthorityRepository interface {
	Create(ctx context.Context, a *models.Authority) error
	List(ctx context.Context) ([]models.Authority, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivityRepository stores the employee action log.
type ActivityRepository interface {
	Insert(ctx context.Context, entry *models.ActivityLog) error
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
	ByReport(ctx context.Context, reportID uuid.UUID, limit int) ([]models.ActivityLog, error)
}

// Mailer delivers HTML mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// PhotoUploader persists an image and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, content io.Reader, contentType, folder string) (string, error)
}

// Clock returns the current instant. Tests substitute a fixed clock.
type Clock func() time.Time
