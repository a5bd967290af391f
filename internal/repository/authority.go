package repository

import (
	"context"

	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
)

// AuthorityStore persists authority contacts. The location triple is unique.
type AuthorityStore struct {
	db DB
}

func NewAuthorityStore(db DB) *AuthorityStore {
	return &AuthorityStore{db: db}
}

func (s *AuthorityStore) Create(ctx context.Context, a *models.Authority) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO authorities (id, district, block, locality, email, authority_name, contact_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, a.ID, a.Location.District, a.Location.Block, a.Location.Locality,
		a.Email, a.AuthorityName, a.ContactNumber).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapError(err, "authority")
}

func (s *AuthorityStore) List(ctx context.Context) ([]models.Authority, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, district, block, locality, email, authority_name, contact_number, created_at, updated_at
		FROM authorities
		ORDER BY district, block, locality
	`)
	if err != nil {
		return nil, mapError(err, "authority")
	}
	defer rows.Close()

	out := []models.Authority{}
	for rows.Next() {
		var a models.Authority
		if err := rows.Scan(
			&a.ID,
			&a.Location.District,
			&a.Location.Block,
			&a.Location.Locality,
			&a.Email,
			&a.AuthorityName,
			&a.ContactNumber,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, mapError(err, "authority")
		}
		out = append(out, a)
	}
	return out, mapError(rows.Err(), "authority")
}

func (s *AuthorityStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM authorities WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "authority")
	}
	return mustAffect(tag, "authority")
}
