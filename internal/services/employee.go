package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/auth"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errInvalidEmployeeCredentials = apperr.Unauthenticated("Invalid credentials or account is inactive.").
	WithCode("invalid_credentials")

// EmployeeService handles the admin panel's accounts
type EmployeeService struct {
	employees EmployeeRepository
	tokens    *auth.TokenIssuer
	authz     *access.Authorizer
	activity  *ActivityLogService
	logger    *zap.SugaredLogger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(employees EmployeeRepository, tokens *auth.TokenIssuer, authz *access.Authorizer, activity *ActivityLogService, logger *zap.SugaredLogger) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		tokens:    tokens,
		authz:     authz,
		activity:  activity,
		logger:    logger,
	}
}

// Login authenticates an active employee. Missing account, wrong password
// and inactive account are indistinguishable to the caller.
func (s *EmployeeService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	emp, err := s.employees.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, errInvalidEmployeeCredentials
		}
		return nil, apperr.Dependency("Server error during admin login.", err)
	}
	if !auth.CheckPassword(emp.PasswordHash, req.Password) {
		s.logger.Infow("Employee login failed", "employee_id", emp.ID)
		return nil, errInvalidEmployeeCredentials
	}
	if !emp.Active {
		s.logger.Infow("Inactive employee login attempt", "employee_id", emp.ID)
		return nil, errInvalidEmployeeCredentials
	}

	token, err := s.tokens.IssueEmployee(emp)
	if err != nil {
		return nil, apperr.Dependency("Server error during admin login.", err)
	}
	s.logger.Infow("Employee logged in", "employee_id", emp.ID, "role", emp.Role)
	return &models.AuthResult{Token: token, Employee: summarizeEmployee(emp)}, nil
}

// Register creates an employee account (Super Admin only).
func (s *EmployeeService) Register(ctx context.Context, actor access.Actor, req models.RegisterEmployeeRequest) (*models.EmployeeSummary, error) {
	if err := s.authz.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Role must be %q or %q.", models.RoleEmployee, models.RoleSuperAdmin))
	}

	district := strings.TrimSpace(req.EffectiveDistrict())
	switch req.Role {
	case models.RoleEmployee:
		if district == "" {
			return nil, apperr.Validation("District is required for the Employee role.")
		}
	case models.RoleSuperAdmin:
		district = ""
	}

	emp, err := s.create(ctx, req.Name, req.Email, req.Password, req.Role, district)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor, nil, models.ActivityEmployeeCreated,
		fmt.Sprintf("Registered %s account %s", emp.Role, emp.Email))
	return summarizeEmployee(emp), nil
}

// List returns every employee account (Super Admin only).
func (s *EmployeeService) List(ctx context.Context, actor access.Actor) ([]models.Employee, error) {
	if err := s.authz.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, apperr.Dependency("Server error while fetching employees.", err)
	}
	return employees, nil
}

// SetActive activates or deactivates an account (Super Admin only). Tokens
// already issued to a deactivated employee stay valid until they expire.
func (s *EmployeeService) SetActive(ctx context.Context, actor access.Actor, employeeID uuid.UUID, active bool) (*models.Employee, error) {
	if err := s.authz.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	emp, err := s.employees.SetActive(ctx, employeeID, active)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Employee not found.")
		}
		return nil, apperr.Dependency("Server error while updating employee status.", err)
	}

	verb := "deactivated"
	if active {
		verb = "activated"
	}
	s.activity.Record(ctx, actor, nil, models.ActivityEmployeeStatus,
		fmt.Sprintf("Employee %s %s", emp.Email, verb))
	return emp, nil
}

// Bootstrap creates the first Super Admin when none exists yet. Without it
// nobody could register employees on a fresh database.
func (s *EmployeeService) Bootstrap(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	n, err := s.employees.CountByRole(ctx, models.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("count super admins: %w", err)
	}
	if n > 0 {
		return nil
	}
	if name == "" {
		name = "Super Admin"
	}
	emp, err := s.create(ctx, name, email, password, models.RoleSuperAdmin, "")
	if err != nil {
		return fmt.Errorf("bootstrap super admin: %w", err)
	}
	s.logger.Infow("Bootstrapped super admin", "employee_id", emp.ID, "email", emp.Email)
	return nil
}

func (s *EmployeeService) create(ctx context.Context, name, email, password string, role models.Role, district string) (*models.Employee, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Dependency("Server error during employee registration.", err)
	}
	emp := &models.Employee{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		District:     district,
		Active:       true,
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("An employee with this email already exists.")
		}
		return nil, apperr.Dependency("Server error during employee registration.", err)
	}
	return emp, nil
}

func summarizeEmployee(e *models.Employee) *models.EmployeeSummary {
	return &models.EmployeeSummary{
		ID:       e.ID.String(),
		Name:     e.Name,
		Email:    e.Email,
		Role:     e.Role,
		District: e.District,
	}
}
