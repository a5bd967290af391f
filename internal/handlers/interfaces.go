package handlers

import (
	"context"
	"io"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
)

// The interfaces below are satisfied by the services package.

type CitizenAuth interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.CitizenSummary, error)
	VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
}

type Reports interface {
	Submit(ctx context.Context, citizenID uuid.UUID, sub models.ReportSubmission, photo io.Reader) (*models.Report, error)
	ListMine(ctx context.Context, citizenID uuid.UUID) ([]models.ReportView, error)
	Feed(ctx context.Context, district string) ([]models.ReportView, error)
	ToggleUpvote(ctx context.Context, citizenID, reportID uuid.UUID) (*models.UpvoteResult, error)
	ListForEmployee(ctx context.Context, actor access.Actor) ([]models.ReportView, error)
	GetForEmployee(ctx context.Context, actor access.Actor, reportID uuid.UUID) (*models.ReportView, error)
	UpdateStatus(ctx context.Context, actor access.Actor, reportID uuid.UUID, status models.ReportStatus) (*models.Report, error)
}

type Employees interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	Register(ctx context.Context, actor access.Actor, req models.RegisterEmployeeRequest) (*models.EmployeeSummary, error)
	List(ctx context.Context, actor access.Actor) ([]models.Employee, error)
	SetActive(ctx context.Context, actor access.Actor, employeeID uuid.UUID, active bool) (*models.Employee, error)
}

type Authorities interface {
	Create(ctx context.Context, actor access.Actor, req models.CreateAuthorityRequest) (*models.Authority, error)
	List(ctx context.Context, actor access.Actor) ([]models.Authority, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

type Analytics interface {
	Heatmap(ctx context.Context, actor access.Actor, district string) ([]models.AreaCount, error)
}

type ActivityLog interface {
	Recent(ctx context.Context, actor access.Actor, limit int) ([]models.ActivityLog, error)
	ByReport(ctx context.Context, actor access.Actor, reportID uuid.UUID, limit int) ([]models.ActivityLog, error)
}

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
