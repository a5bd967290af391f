package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/metrics"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultDailyReportLimit = 3
	FeedPageSize            = 20
	defaultUploadFolder     = "civicdesk/reports"
)

// ReportConfig holds the report lifecycle settings.
type ReportConfig struct {
	DailyLimit   int
	UploadFolder string
	// TimeZone decides where "today" starts for the daily limit.
	TimeZone *time.Location
}

// ReportService owns report creation, status changes, upvotes and the
// scoped report queries.
type ReportService struct {
	reports  ReportRepository
	citizens CitizenRepository
	uploader PhotoUploader
	authz    *access.Authorizer
	activity *ActivityLogService
	cfg      ReportConfig
	now      Clock
	logger   *zap.SugaredLogger
}

// NewReportService creates a new report service
func NewReportService(reports ReportRepository, citizens CitizenRepository, uploader PhotoUploader, authz *access.Authorizer, activity *ActivityLogService, cfg ReportConfig, logger *zap.SugaredLogger) *ReportService {
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = DefaultDailyReportLimit
	}
	if cfg.UploadFolder == "" {
		cfg.UploadFolder = defaultUploadFolder
	}
	if cfg.TimeZone == nil {
		cfg.TimeZone = time.Local
	}
	return &ReportService{
		reports:  reports,
		citizens: citizens,
		uploader: uploader,
		authz:    authz,
		activity: activity,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// Submit creates a report for the citizen. The photo is uploaded before the
// report is written; the ledger append afterwards is best effort.
func (s *ReportService) Submit(ctx context.Context, citizenID uuid.UUID, sub models.ReportSubmission, photo io.Reader) (*models.Report, error) {
	sub.Title = strings.TrimSpace(sub.Title)
	sub.Content = strings.TrimSpace(sub.Content)
	sub.Location = trimLocation(sub.Location)
	if photo == nil {
		return nil, apperr.Validation("A photo is required.")
	}
	if err := validateStruct(sub); err != nil {
		return nil, err
	}

	citizen, err := s.citizens.FindByID(ctx, citizenID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("User not found.")
		}
		return nil, apperr.Dependency("Server error during report submission.", err)
	}

	now := s.now()
	if citizen.SubmissionsSince(StartOfDay(now, s.cfg.TimeZone)) >= s.cfg.DailyLimit {
		metrics.ObserveSubmission("rate_limited")
		return nil, apperr.RateLimited(fmt.Sprintf("You have reached your daily report limit of %d.", s.cfg.DailyLimit))
	}

	photoURL, err := s.uploader.Upload(ctx, photo, sub.PhotoContentType, s.cfg.UploadFolder)
	if err != nil {
		metrics.ObserveSubmission("upload_failed")
		s.logger.Errorw("Photo upload failed", "citizen_id", citizenID, "error", err)
		return nil, apperr.Dependency("Failed to upload photo.", err)
	}

	report := &models.Report{
		ID:          uuid.New(),
		SubmittedBy: citizenID,
		Title:       sub.Title,
		Content:     sub.Content,
		PhotoURL:    photoURL,
		Location:    sub.Location,
		Status:      models.StatusPending,
		Upvotes:     []uuid.UUID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		metrics.ObserveSubmission("store_failed")
		return nil, apperr.Dependency("Server error during report submission.", err)
	}

	if err := s.citizens.AppendLedger(ctx, citizenID, models.LedgerEntry{ReportID: report.ID, SubmittedAt: now}); err != nil {
		// The report stays; it just won't count toward today's limit.
		s.logger.Errorw("Failed to append report to citizen history",
			"citizen_id", citizenID,
			"report_id", report.ID,
			"error", err,
		)
	}

	metrics.ObserveSubmission("accepted")
	s.logger.Infow("Report submitted",
		"report_id", report.ID,
		"citizen_id", citizenID,
		"district", report.Location.District,
	)
	return report, nil
}

// ListMine returns the citizen's own reports, newest first.
func (s *ReportService) ListMine(ctx context.Context, citizenID uuid.UUID) ([]models.ReportView, error) {
	views, err := s.reports.List(ctx, models.ReportFilter{SubmittedBy: citizenID})
	if err != nil {
		return nil, apperr.Dependency("Server error while fetching reports.", err)
	}
	return withCounts(views), nil
}

// Feed returns the newest reports of a district for the community feed.
func (s *ReportService) Feed(ctx context.Context, district string) ([]models.ReportView, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return nil, apperr.Validation("Missing required field: district.")
	}
	views, err := s.reports.List(ctx, models.ReportFilter{District: district, Limit: FeedPageSize})
	if err != nil {
		return nil, apperr.Dependency("Server error while fetching the feed.", err)
	}
	for i := range views {
		views[i].Submitter.Email = ""
	}
	return withCounts(views), nil
}

// ToggleUpvote flips the citizen's upvote on a report.
func (s *ReportService) ToggleUpvote(ctx context.Context, citizenID, reportID uuid.UUID) (*models.UpvoteResult, error) {
	upvoted, count, err := s.reports.ToggleUpvote(ctx, reportID, citizenID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Report not found.")
		}
		return nil, apperr.Dependency("Server error while updating upvote.", err)
	}
	return &models.UpvoteResult{ReportID: reportID.String(), Upvoted: upvoted, UpvoteCount: count}, nil
}

// ListForEmployee returns the reports the actor may see, newest first.
func (s *ReportService) ListForEmployee(ctx context.Context, actor access.Actor) ([]models.ReportView, error) {
	filter := s.authz.ScopeReports(actor, models.ReportFilter{})
	views, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, apperr.Dependency("Server error while fetching reports.", err)
	}
	return withCounts(views), nil
}

// GetForEmployee returns one report if it is within the actor's scope.
func (s *ReportService) GetForEmployee(ctx context.Context, actor access.Actor, reportID uuid.UUID) (*models.ReportView, error) {
	view, err := s.reports.FindView(ctx, reportID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Report not found.")
		}
		return nil, apperr.Dependency("Server error while fetching the report.", err)
	}
	if err := s.authz.AuthorizeReport(actor, &view.Report); err != nil {
		return nil, err
	}
	view.UpvoteCount = len(view.Upvotes)
	return view, nil
}

// UpdateStatus overwrites a report's status. Any status may follow any
// other; only the district scope gates the change.
func (s *ReportService) UpdateStatus(ctx context.Context, actor access.Actor, reportID uuid.UUID, status models.ReportStatus) (*models.Report, error) {
	if !status.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Status must be one of %q, %q or %q.",
			models.StatusPending, models.StatusApproved, models.StatusRejected))
	}

	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Report not found.")
		}
		return nil, apperr.Dependency("Server error while updating report status.", err)
	}
	if err := s.authz.AuthorizeReport(actor, report); err != nil {
		return nil, err
	}

	previous := report.Status
	updated, err := s.reports.UpdateStatus(ctx, reportID, status)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Report not found.")
		}
		return nil, apperr.Dependency("Server error while updating report status.", err)
	}

	s.activity.Record(ctx, actor, &updated.ID, models.ActivityStatusUpdate,
		fmt.Sprintf("Status changed from %s to %s", previous, status))
	return updated, nil
}

func withCounts(views []models.ReportView) []models.ReportView {
	if views == nil {
		return []models.ReportView{}
	}
	for i := range views {
		views[i].UpvoteCount = len(views[i].Upvotes)
	}
	return views
}

func trimLocation(l models.Location) models.Location {
	return models.Location{
		District: strings.TrimSpace(l.District),
		Block:    strings.TrimSpace(l.Block),
		Locality: strings.TrimSpace(l.Locality),
	}
}
