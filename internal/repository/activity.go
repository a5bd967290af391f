package repository

import (
	"context"

	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
)

// ActivityStore persists the employee action log.
type ActivityStore struct {
	db DB
}

func NewActivityStore(db DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) Insert(ctx context.Context, e *models.ActivityLog) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO activity_logs (id, report_id, employee_id, activity_type, action_description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, e.ID, e.ReportID, e.EmployeeID, e.ActivityType, e.ActionDescription).Scan(&e.CreatedAt)
	return mapError(err, "activity log")
}

func (s *ActivityStore) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return s.query(ctx, `
		SELECT id, report_id, employee_id, activity_type, action_description, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
}

func (s *ActivityStore) ByReport(ctx context.Context, reportID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	return s.query(ctx, `
		SELECT id, report_id, employee_id, activity_type, action_description, created_at
		FROM activity_logs
		WHERE report_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, reportID, limit)
}

func (s *ActivityStore) query(ctx context.Context, sql string, args ...any) ([]models.ActivityLog, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "activity log")
	}
	defer rows.Close()

	out := []models.ActivityLog{}
	for rows.Next() {
		var e models.ActivityLog
		if err := rows.Scan(&e.ID, &e.ReportID, &e.EmployeeID, &e.ActivityType, &e.ActionDescription, &e.CreatedAt); err != nil {
			return nil, mapError(err, "activity log")
		}
		out = append(out, e)
	}
	return out, mapError(rows.Err(), "activity log")
}
