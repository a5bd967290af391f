package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema. Every statement is idempotent, so it runs on
// each start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range statements() {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement failed: %w\nstatement: %s", err, stmt)
		}
	}
	return nil
}

func statements() []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// citizen_report_ledger holds one row per accepted submission and backs the
// daily limit. reports.upvotes is a set of citizen ids kept duplicate-free by
// the toggle query.
const schema = `
CREATE TABLE IF NOT EXISTS citizens (
	id             UUID PRIMARY KEY,
	email          TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	password_hash  TEXT NOT NULL,
	is_verified    BOOLEAN NOT NULL DEFAULT FALSE,
	otp_hash       TEXT,
	otp_expires_at TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS employees (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('Employee', 'Super Admin')),
	district      TEXT NOT NULL DEFAULT '',
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS reports (
	id           UUID PRIMARY KEY,
	submitted_by UUID NOT NULL REFERENCES citizens(id),
	title        TEXT NOT NULL,
	content      TEXT NOT NULL,
	photo_url    TEXT NOT NULL,
	district     TEXT NOT NULL,
	block        TEXT NOT NULL,
	locality     TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
	upvotes      UUID[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reports_district_created ON reports (district, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_submitter_created ON reports (submitted_by, created_at DESC);

CREATE TABLE IF NOT EXISTS citizen_report_ledger (
	citizen_id   UUID NOT NULL REFERENCES citizens(id) ON DELETE CASCADE,
	report_id    UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	submitted_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (citizen_id, report_id)
);

CREATE INDEX IF NOT EXISTS idx_ledger_citizen_submitted ON citizen_report_ledger (citizen_id, submitted_at);

CREATE TABLE IF NOT EXISTS authorities (
	id             UUID PRIMARY KEY,
	district       TEXT NOT NULL,
	block          TEXT NOT NULL,
	locality       TEXT NOT NULL,
	email          TEXT NOT NULL,
	authority_name TEXT NOT NULL DEFAULT '',
	contact_number TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (district, block, locality)
);

CREATE TABLE IF NOT EXISTS activity_logs (
	id                 UUID PRIMARY KEY,
	report_id          UUID,
	employee_id        UUID NOT NULL,
	activity_type      TEXT NOT NULL,
	action_description TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_activity_report_created ON activity_logs (report_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_logs (created_at DESC)
`
