package repository

import (
	"context"

	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, email, name, password_hash, role, district, is_active, created_at, updated_at`

// EmployeeStore persists employee accounts.
type EmployeeStore struct {
	db DB
}

func NewEmployeeStore(db DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var e models.Employee
	err := row.Scan(
		&e.ID,
		&e.Email,
		&e.Name,
		&e.PasswordHash,
		&e.Role,
		&e.District,
		&e.Active,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "employee")
	}
	return &e, nil
}

func (s *EmployeeStore) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	return scanEmployee(s.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = $1`, email))
}

func (s *EmployeeStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	return scanEmployee(s.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
}

func (s *EmployeeStore) Create(ctx context.Context, e *models.Employee) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO employees (id, email, name, password_hash, role, district, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, e.ID, e.Email, e.Name, e.PasswordHash, string(e.Role), e.District, e.Active).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	return mapError(err, "employee")
}

func (s *EmployeeStore) List(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.db.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError(err, "employee")
	}
	defer rows.Close()

	out := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, mapError(rows.Err(), "employee")
}

func (s *EmployeeStore) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Employee, error) {
	return scanEmployee(s.db.QueryRow(ctx, `
		UPDATE employees SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+employeeColumns, id, active))
}

func (s *EmployeeStore) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE role = $1`, string(role)).Scan(&n)
	return n, mapError(err, "employee")
}
