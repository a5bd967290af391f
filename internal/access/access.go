// Package access decides what an authenticated employee may do and which
// reports they may see.
package access

import (
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/auth"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is an authenticated employee. It is either a DistrictEmployee or a
// SuperAdmin; no other implementations exist.
type Actor interface {
	EmployeeID() uuid.UUID
	Role() models.Role
	actor()
}

// DistrictEmployee is scoped to one district.
type DistrictEmployee struct {
	ID       uuid.UUID
	District string
}

func (e DistrictEmployee) EmployeeID() uuid.UUID { return e.ID }
func (DistrictEmployee) Role() models.Role       { return models.RoleEmployee }
func (DistrictEmployee) actor()                  {}

// SuperAdmin sees and mutates everything.
type SuperAdmin struct {
	ID uuid.UUID
}

func (a SuperAdmin) EmployeeID() uuid.UUID { return a.ID }
func (SuperAdmin) Role() models.Role       { return models.RoleSuperAdmin }
func (SuperAdmin) actor()                  {}

// FromClaims converts verified employee claims into an Actor. A token with an
// unknown role, or an Employee token without a district, is treated as
// unauthenticated: such a token was never issued by this server.
func FromClaims(claims *auth.EmployeeClaims) (Actor, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, auth.ErrUnauthenticated
	}
	switch claims.Role {
	case models.RoleSuperAdmin:
		return SuperAdmin{ID: id}, nil
	case models.RoleEmployee:
		if claims.District == "" {
			return nil, auth.ErrUnauthenticated
		}
		return DistrictEmployee{ID: id, District: claims.District}, nil
	}
	return nil, auth.ErrUnauthenticated
}

// FromEmployee builds the Actor for a stored employee record.
func FromEmployee(e *models.Employee) Actor {
	if e.Role == models.RoleSuperAdmin {
		return SuperAdmin{ID: e.ID}
	}
	return DistrictEmployee{ID: e.ID, District: e.District}
}

// Authorizer applies role and district rules.
type Authorizer struct {
	logger *zap.SugaredLogger
}

// NewAuthorizer creates an authorizer. A nil logger disables denial logs.
func NewAuthorizer(logger *zap.SugaredLogger) *Authorizer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Authorizer{logger: logger}
}

// RequireSuperAdmin allows only Super Admins.
func (a *Authorizer) RequireSuperAdmin(actor Actor) error {
	if _, ok := actor.(SuperAdmin); ok {
		return nil
	}
	a.logger.Warnw("Super admin permission denied",
		"employee_id", actor.EmployeeID(),
		"role", actor.Role(),
	)
	return apperr.Forbidden("Access denied. Super Admin privileges required.")
}

// ScopeReports narrows a report filter to what the actor may list.
func (a *Authorizer) ScopeReports(actor Actor, filter models.ReportFilter) models.ReportFilter {
	if e, ok := actor.(DistrictEmployee); ok {
		filter.District = e.District
	}
	return filter
}

// AuthorizeReport checks a single fetched report against the actor's scope.
func (a *Authorizer) AuthorizeReport(actor Actor, report *models.Report) error {
	switch e := actor.(type) {
	case SuperAdmin:
		return nil
	case DistrictEmployee:
		if report.Location.District == e.District {
			return nil
		}
		a.logger.Warnw("District access denied",
			"employee_id", e.ID,
			"employee_district", e.District,
			"report_id", report.ID,
			"report_district", report.Location.District,
		)
	}
	return apperr.Forbidden("Permission denied. You can only manage reports in your own district.")
}
