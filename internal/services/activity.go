package services

import (
	"context"
	"fmt"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxActivityLimit = 200

// ActivityLogService records employee actions for accountability tracking
type ActivityLogService struct {
	repo   ActivityRepository
	authz  *access.Authorizer
	logger *zap.SugaredLogger
}

// NewActivityLogService creates a new activity log service
func NewActivityLogService(repo ActivityRepository, authz *access.Authorizer, logger *zap.SugaredLogger) *ActivityLogService {
	return &ActivityLogService{repo: repo, authz: authz, logger: logger}
}

// Record writes an entry for an action that already succeeded. A failure
// here is logged and swallowed; the action itself is not rolled back.
func (s *ActivityLogService) Record(ctx context.Context, actor access.Actor, reportID *uuid.UUID, activityType, description string) {
	entry := &models.ActivityLog{
		ReportID:          reportID,
		EmployeeID:        actor.EmployeeID(),
		ActivityType:      activityType,
		ActionDescription: description,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Errorw("Failed to record activity",
			"employee_id", entry.EmployeeID,
			"type", activityType,
			"error", err,
		)
		return
	}

	s.logger.Infow("Activity logged",
		"employee_id", entry.EmployeeID,
		"type", activityType,
		"action", description,
	)
}

// Recent returns the latest entries across all reports (Super Admin only).
func (s *ActivityLogService) Recent(ctx context.Context, actor access.Actor, limit int) ([]models.ActivityLog, error) {
	if err := s.authz.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	logs, err := s.repo.Recent(ctx, clampLimit(limit))
	if err != nil {
		return nil, apperr.Dependency("Server error while fetching activity.", fmt.Errorf("recent activity: %w", err))
	}
	return logs, nil
}

// ByReport returns the entries for one report (Super Admin only).
func (s *ActivityLogService) ByReport(ctx context.Context, actor access.Actor, reportID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	if err := s.authz.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	logs, err := s.repo.ByReport(ctx, reportID, clampLimit(limit))
	if err != nil {
		return nil, apperr.Dependency("Server error while fetching activity.", fmt.Errorf("report activity: %w", err))
	}
	return logs, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxActivityLimit {
		return maxActivityLimit
	}
	return limit
}
