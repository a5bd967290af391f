package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// upvotes are read as text[] and parsed, which keeps scanning independent of
// how the driver maps uuid arrays.
const reportColumns = `r.id, r.submitted_by, r.title, r.content, r.photo_url,
	r.district, r.block, r.locality, r.status, r.upvotes::text[], r.created_at, r.updated_at`

// ReportStore persists reports.
type ReportStore struct {
	db DB
}

func NewReportStore(db DB) *ReportStore {
	return &ReportStore{db: db}
}

func scanReport(row pgx.Row, extra ...any) (*models.Report, error) {
	var (
		r       models.Report
		upvotes []string
	)
	dest := []any{
		&r.ID,
		&r.SubmittedBy,
		&r.Title,
		&r.Content,
		&r.PhotoURL,
		&r.Location.District,
		&r.Location.Block,
		&r.Location.Locality,
		&r.Status,
		&upvotes,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapError(err, "report")
	}
	ids, err := parseUUIDs(upvotes)
	if err != nil {
		return nil, fmt.Errorf("report %s upvotes: %w", r.ID, err)
	}
	r.Upvotes = ids
	return &r, nil
}

func scanView(row pgx.Row) (*models.ReportView, error) {
	var name, email *string
	r, err := scanReport(row, &name, &email)
	if err != nil {
		return nil, err
	}
	v := &models.ReportView{Report: *r, UpvoteCount: len(r.Upvotes)}
	v.Submitter.ID = r.SubmittedBy
	if name != nil {
		v.Submitter.Name = *name
	}
	if email != nil {
		v.Submitter.Email = *email
	}
	return v, nil
}

func parseUUIDs(in []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(in))
	for _, s := range in {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *ReportStore) Create(ctx context.Context, r *models.Report) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO reports (id, submitted_by, title, content, photo_url, district, block, locality, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.SubmittedBy, r.Title, r.Content, r.PhotoURL,
		r.Location.District, r.Location.Block, r.Location.Locality,
		string(r.Status), r.CreatedAt, r.UpdatedAt)
	return mapError(err, "report")
}

func (s *ReportStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return scanReport(s.db.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports r WHERE r.id = $1`, id))
}

func (s *ReportStore) FindView(ctx context.Context, id uuid.UUID) (*models.ReportView, error) {
	return scanView(s.db.QueryRow(ctx, `
		SELECT `+reportColumns+`, c.name, c.email
		FROM reports r
		LEFT JOIN citizens c ON c.id = r.submitted_by
		WHERE r.id = $1
	`, id))
}

// listQuery builds the filtered, newest-first report query.
func listQuery(f models.ReportFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.District != "" {
		args = append(args, f.District)
		where = append(where, fmt.Sprintf("r.district = $%d", len(args)))
	}
	if f.SubmittedBy != uuid.Nil {
		args = append(args, f.SubmittedBy)
		where = append(where, fmt.Sprintf("r.submitted_by = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + reportColumns + `, c.name, c.email FROM reports r LEFT JOIN citizens c ON c.id = r.submitted_by`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY r.created_at DESC, r.id")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

func (s *ReportStore) List(ctx context.Context, f models.ReportFilter) ([]models.ReportView, error) {
	query, args := listQuery(f)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "report")
	}
	defer rows.Close()

	out := []models.ReportView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, mapError(rows.Err(), "report")
}

func (s *ReportStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus) (*models.Report, error) {
	return scanReport(s.db.QueryRow(ctx, `
		UPDATE reports r SET status = $2, updated_at = NOW()
		WHERE r.id = $1
		RETURNING `+reportColumns, id, string(status)))
}

// ToggleUpvote flips membership in a single statement, so concurrent toggles
// by different citizens cannot lose each other's writes.
func (s *ReportStore) ToggleUpvote(ctx context.Context, reportID, citizenID uuid.UUID) (bool, int, error) {
	var (
		upvoted bool
		count   int
	)
	err := s.db.QueryRow(ctx, toggleUpvoteSQL, reportID, citizenID).Scan(&upvoted, &count)
	if err != nil {
		return false, 0, mapError(err, "report")
	}
	return upvoted, count, nil
}

const toggleUpvoteSQL = `
	UPDATE reports
	SET upvotes = CASE
		WHEN $2::uuid = ANY(upvotes) THEN array_remove(upvotes, $2::uuid)
		ELSE array_append(upvotes, $2::uuid)
	END
	WHERE id = $1
	RETURNING $2::uuid = ANY(upvotes), cardinality(upvotes)
`

func (s *ReportStore) CountByDistrict(ctx context.Context) ([]models.AreaCount, error) {
	return s.counts(ctx, `
		SELECT district, COUNT(*) FROM reports
		GROUP BY district
		ORDER BY district
	`)
}

func (s *ReportStore) CountByBlock(ctx context.Context, district string) ([]models.AreaCount, error) {
	return s.counts(ctx, `
		SELECT block, COUNT(*) FROM reports
		WHERE district = $1
		GROUP BY block
		ORDER BY block
	`, district)
}

func (s *ReportStore) counts(ctx context.Context, query string, args ...any) ([]models.AreaCount, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "report counts")
	}
	defer rows.Close()

	out := []models.AreaCount{}
	for rows.Next() {
		var c models.AreaCount
		if err := rows.Scan(&c.Area, &c.Count); err != nil {
			return nil, mapError(err, "report counts")
		}
		out = append(out, c)
	}
	return out, mapError(rows.Err(), "report counts")
}
