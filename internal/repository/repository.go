// Package repository implements the service storage interfaces on
// PostgreSQL through pgx.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the stores use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mapError turns driver errors into the categories services expect.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity + " not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict(entity + " already exists")
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// mustAffect reports NotFound when an UPDATE or DELETE touched no row.
func mustAffect(tag pgconn.CommandTag, entity string) error {
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(entity + " not found")
	}
	return nil
}
