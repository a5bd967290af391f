package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthorityService manages authority contacts (Super Admin only).
type AuthorityService struct {
	authorities AuthorityRepository
	authz       *access.Authorizer
	activity    *ActivityLogService
	logger      *zap.SugaredLogger
}

// NewAuthorityService creates a new authority service
func NewAuthorityService(authorities AuthorityRepository, authz *access.Authorizer, activity *ActivityLogService, logger *zap.SugaredLogger) *AuthorityService {
	return &AuthorityService{authorities: authorities, authz: authz, activity: activity, logger: logger}
}

// Create adds a contact; the location triple must be unique.
func (s *AuthorityService) Create(ctx context.Context, actor access.Actor, req models.CreateAuthorityRequest) (*models.Authority, error) {
	if err := s.authz.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	req.Email = normalizeEmail(req.Email)
	req.District = strings.TrimSpace(req.District)
	req.Block = strings.TrimSpace(req.Block)
	req.Locality = strings.TrimSpace(req.Locality)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	a := &models.Authority{
		ID:            uuid.New(),
		Location:      models.Location{District: req.District, Block: req.Block, Locality: req.Locality},
		Email:         req.Email,
		AuthorityName: strings.TrimSpace(req.AuthorityName),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
	}
	if err := s.authorities.Create(ctx, a); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("An authority already exists for this district, block and locality.")
		}
		return nil, apperr.Dependency("Server error creating authority.", err)
	}

	s.activity.Record(ctx, actor, nil, models.ActivityAuthorityCreated,
		fmt.Sprintf("Authority %s added for %s/%s/%s", a.Email, a.Location.District, a.Location.Block, a.Location.Locality))
	return a, nil
}

// List returns all contacts ordered by district.
func (s *AuthorityService) List(ctx context.Context, actor access.Actor) ([]models.Authority, error) {
	if err := s.authz.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	list, err := s.authorities.List(ctx)
	if err != nil {
		return nil, apperr.Dependency("Server error fetching authorities.", err)
	}
	if list == nil {
		list = []models.Authority{}
	}
	return list, nil
}

// Delete removes a contact.
func (s *AuthorityService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := s.authz.RequireSuperAdmin(actor); err != nil {
		return err
	}
	if err := s.authorities.Delete(ctx, id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("Authority not found.")
		}
		return apperr.Dependency("Server error deleting authority.", err)
	}
	s.activity.Record(ctx, actor, nil, models.ActivityAuthorityDeleted, fmt.Sprintf("Authority %s deleted", id))
	return nil
}
