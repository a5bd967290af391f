package services

import (
	"context"
	"strings"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"go.uber.org/zap"
)

// AnalyticsService produces grouped report counts for the heatmap.
type AnalyticsService struct {
	reports ReportRepository
	authz   *access.Authorizer
	logger  *zap.SugaredLogger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(reports ReportRepository, authz *access.Authorizer, logger *zap.SugaredLogger) *AnalyticsService {
	return &AnalyticsService{reports: reports, authz: authz, logger: logger}
}

// Heatmap counts reports per district, or per block when district is set.
// Every status is counted.
func (s *AnalyticsService) Heatmap(ctx context.Context, actor access.Actor, district string) ([]models.AreaCount, error) {
	if err := s.authz.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}

	var (
		counts []models.AreaCount
		err    error
	)
	if district = strings.TrimSpace(district); district != "" {
		counts, err = s.reports.CountByBlock(ctx, district)
	} else {
		counts, err = s.reports.CountByDistrict(ctx)
	}
	if err != nil {
		return nil, apperr.Dependency("Server error while fetching heatmap data.", err)
	}
	if counts == nil {
		counts = []models.AreaCount{}
	}
	return counts, nil
}
