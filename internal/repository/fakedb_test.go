package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// recordingDB captures the statements a store sends and answers with a
// fixed command tag. Rows are never produced.
type recordingDB struct {
	tag  pgconn.CommandTag
	sql  []string
	args [][]any
}

func (d *recordingDB) record(sql string, args []any) {
	d.sql = append(d.sql, sql)
	d.args = append(d.args, args)
}

func (d *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.record(sql, args)
	return d.tag, nil
}

func (d *recordingDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	d.record(sql, args)
	return nil, pgx.ErrNoRows
}

func (d *recordingDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	d.record(sql, args)
	return noRow{}
}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }
