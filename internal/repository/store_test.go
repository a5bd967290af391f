package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMarkVerifiedConsumesCheckedCode(t *testing.T) {
	db := &recordingDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	store := NewCitizenStore(db)
	id := uuid.New()

	if err := store.MarkVerified(context.Background(), id, "hash-a"); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	q := db.sql[0]
	for _, want := range []string{"is_verified = FALSE", "otp_hash = $2"} {
		if !strings.Contains(q, want) {
			t.Errorf("statement %q missing guard %q", q, want)
		}
	}
	if args := db.args[0]; len(args) != 2 || args[0] != id || args[1] != "hash-a" {
		t.Errorf("args = %v", args)
	}
}

func TestMarkVerifiedLostRaceIsConflict(t *testing.T) {
	db := &recordingDB{tag: pgconn.NewCommandTag("UPDATE 0")}
	err := NewCitizenStore(db).MarkVerified(context.Background(), uuid.New(), "stale-hash")
	if !apperr.Is(err, apperr.KindConflict) || apperr.CodeOf(err) != "already_verified" {
		t.Fatalf("err = %v, want conflict already_verified", err)
	}
}

func TestToggleUpvoteIsSingleStatement(t *testing.T) {
	db := &recordingDB{}
	reportID, citizenID := uuid.New(), uuid.New()

	_, _, err := NewReportStore(db).ToggleUpvote(context.Background(), reportID, citizenID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing report: err = %v, want not found", err)
	}
	if len(db.sql) != 1 {
		t.Fatalf("statements = %d, want 1", len(db.sql))
	}
	q := db.sql[0]
	for _, want := range []string{"= ANY(upvotes)", "array_remove(upvotes, $2::uuid)", "array_append(upvotes, $2::uuid)", "RETURNING"} {
		if !strings.Contains(q, want) {
			t.Errorf("statement missing %q:\n%s", want, q)
		}
	}
	if args := db.args[0]; args[0] != reportID || args[1] != citizenID {
		t.Errorf("args = %v", args)
	}
}
