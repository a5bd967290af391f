package handlers

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/auth"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/DeepakPatel004/CivicDesk/internal/ratelimit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNotStubbed = errors.New("not stubbed")

type stubCitizens struct {
	signup func(models.SignupRequest) (*models.CitizenSummary, error)
}

func (s *stubCitizens) Signup(_ context.Context, req models.SignupRequest) (*models.CitizenSummary, error) {
	if s.signup == nil {
		return nil, errNotStubbed
	}
	return s.signup(req)
}

func (s *stubCitizens) VerifyOTP(context.Context, models.VerifyOTPRequest) (*models.AuthResult, error) {
	return &models.AuthResult{Token: "citizen-token"}, nil
}

func (s *stubCitizens) Login(context.Context, models.LoginRequest) (*models.AuthResult, error) {
	return &models.AuthResult{Token: "citizen-token"}, nil
}

// stubReports records what the handlers passed through.
type stubReports struct {
	submitted  *models.ReportSubmission
	photo      []byte
	submitErr  error
	feedFor    string
	upvoteErr  error
	statusSeen models.ReportStatus
}

func (s *stubReports) Submit(_ context.Context, citizenID uuid.UUID, sub models.ReportSubmission, photo io.Reader) (*models.Report, error) {
	s.submitted = &sub
	if photo != nil {
		s.photo, _ = io.ReadAll(photo)
	}
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &models.Report{ID: uuid.New(), SubmittedBy: citizenID, Title: sub.Title, Location: sub.Location, Status: models.StatusPending}, nil
}

func (s *stubReports) ListMine(context.Context, uuid.UUID) ([]models.ReportView, error) {
	return []models.ReportView{}, nil
}

func (s *stubReports) Feed(_ context.Context, district string) ([]models.ReportView, error) {
	s.feedFor = district
	return []models.ReportView{}, nil
}

func (s *stubReports) ToggleUpvote(_ context.Context, _, reportID uuid.UUID) (*models.UpvoteResult, error) {
	if s.upvoteErr != nil {
		return nil, s.upvoteErr
	}
	return &models.UpvoteResult{ReportID: reportID.String(), Upvoted: true, UpvoteCount: 1}, nil
}

func (s *stubReports) ListForEmployee(context.Context, access.Actor) ([]models.ReportView, error) {
	return []models.ReportView{}, nil
}

func (s *stubReports) GetForEmployee(_ context.Context, _ access.Actor, id uuid.UUID) (*models.ReportView, error) {
	return &models.ReportView{Report: models.Report{ID: id}}, nil
}

func (s *stubReports) UpdateStatus(_ context.Context, _ access.Actor, id uuid.UUID, status models.ReportStatus) (*models.Report, error) {
	s.statusSeen = status
	return &models.Report{ID: id, Status: status}, nil
}

type stubEmployees struct {
	setActive *bool
}

func (s *stubEmployees) Login(context.Context, models.LoginRequest) (*models.AuthResult, error) {
	return &models.AuthResult{Token: "employee-token"}, nil
}

func (s *stubEmployees) Register(_ context.Context, _ access.Actor, req models.RegisterEmployeeRequest) (*models.EmployeeSummary, error) {
	return &models.EmployeeSummary{ID: uuid.NewString(), Email: req.Email, Role: req.Role}, nil
}

func (s *stubEmployees) List(context.Context, access.Actor) ([]models.Employee, error) {
	return []models.Employee{}, nil
}

func (s *stubEmployees) SetActive(_ context.Context, _ access.Actor, id uuid.UUID, active bool) (*models.Employee, error) {
	s.setActive = &active
	return &models.Employee{ID: id, Active: active}, nil
}

type stubAuthorities struct{}

func (stubAuthorities) Create(_ context.Context, _ access.Actor, req models.CreateAuthorityRequest) (*models.Authority, error) {
	return &models.Authority{ID: uuid.New(), Location: models.Location{District: req.District, Block: req.Block, Locality: req.Locality}}, nil
}

func (stubAuthorities) List(context.Context, access.Actor) ([]models.Authority, error) {
	return []models.Authority{}, nil
}

func (stubAuthorities) Delete(context.Context, access.Actor, uuid.UUID) error { return nil }

type stubAnalytics struct{}

func (stubAnalytics) Heatmap(_ context.Context, _ access.Actor, district string) ([]models.AreaCount, error) {
	return []models.AreaCount{{Area: "Pune", Count: 2}}, nil
}

type stubActivity struct{}

func (stubActivity) Recent(context.Context, access.Actor, int) ([]models.ActivityLog, error) {
	return []models.ActivityLog{}, nil
}

func (stubActivity) ByReport(context.Context, access.Actor, uuid.UUID, int) ([]models.ActivityLog, error) {
	return []models.ActivityLog{}, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	citizens  *stubCitizens
	reports   *stubReports
	employees *stubEmployees
	tokens    *auth.TokenIssuer
	deps      Deps
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: "handler-test-secret"})
	if err != nil {
		t.Fatal(err)
	}
	logger := zap.NewNop()
	ts := &testServer{
		citizens:  &stubCitizens{},
		reports:   &stubReports{},
		employees: &stubEmployees{},
		tokens:    tokens,
	}
	ts.deps = Deps{
		Citizens:       ts.citizens,
		Reports:        ts.reports,
		Employees:      ts.employees,
		Authorities:    stubAuthorities{},
		Analytics:      stubAnalytics{},
		Activity:       stubActivity{},
		Tokens:         tokens,
		Authz:          access.NewAuthorizer(logger.Sugar()),
		Limiter:        ratelimit.NewMemory(1000, time.Minute),
		DB:             pinger{},
		AllowedOrigins: []string{"*"},
		MaxUploadMB:    1,
		Logger:         logger,
	}
	return ts
}

func (ts *testServer) citizenToken(t *testing.T) string {
	t.Helper()
	tok, err := ts.tokens.IssueCitizen(uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func (ts *testServer) employeeToken(t *testing.T, role models.Role, district string) string {
	t.Helper()
	tok, err := ts.tokens.IssueEmployee(&models.Employee{ID: uuid.New(), Role: role, District: district})
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}
