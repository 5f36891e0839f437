// Package storagetest opens migrated in-memory SQLite databases for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"swimtrack/internal/adapters/storage"
)

// OpenDB returns a migrated in-memory database closed at test cleanup.
// The pool is pinned to one connection so every statement sees the same data.
func OpenDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Fixture is a competition with one team, two swimmers and a referee.
type Fixture struct {
	CompetitionID string
	TeamID        string
	OtherTeamID   string
	SwimmerIDs    []string
	RefereeID     string
	RefereeUserID string
}

// Seed inserts a minimal competition graph with raw SQL.
func Seed(t testing.TB, db *sql.DB) Fixture {
	t.Helper()
	now := storage.FormatTime(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	f := Fixture{
		CompetitionID: "comp-1",
		TeamID:        "team-1",
		OtherTeamID:   "team-2",
		SwimmerIDs:    []string{"sw-1", "sw-2", "sw-3"},
		RefereeID:     "ref-1",
		RefereeUserID: "user-ref-1",
	}
	stmts := []struct {
		q    string
		args []any
	}{
		{`INSERT INTO account (id, login, role, created_at) VALUES (?, 'org@club.nz', 'organizer', ?)`, []any{"user-org", now}},
		{`INSERT INTO account (id, login, role, created_at) VALUES (?, 'ref_12345', 'referee', ?)`, []any{f.RefereeUserID, now}},
		{`INSERT INTO competition (id, name, date, start_time, location, number_of_lanes, organizer_id, status, created_at)
			VALUES (?, 'Harbour 24', '2026-06-01', '12:00', 'Pool', 4, 'user-org', 'active', ?)`, []any{f.CompetitionID, now}},
		{`INSERT INTO team (id, competition_id, name, color, assigned_lane, created_at) VALUES (?, ?, 'Sharks', 'blue', 1, ?)`, []any{f.TeamID, f.CompetitionID, now}},
		{`INSERT INTO team (id, competition_id, name, color, assigned_lane, created_at) VALUES (?, ?, 'Eels', 'red', 2, ?)`, []any{f.OtherTeamID, f.CompetitionID, now}},
		{`INSERT INTO swimmer (id, competition_id, team_id, name, created_at) VALUES (?, ?, ?, 'Ana', ?)`, []any{f.SwimmerIDs[0], f.CompetitionID, f.TeamID, now}},
		{`INSERT INTO swimmer (id, competition_id, team_id, name, created_at) VALUES (?, ?, ?, 'Ben', ?)`, []any{f.SwimmerIDs[1], f.CompetitionID, f.TeamID, now}},
		{`INSERT INTO swimmer (id, competition_id, team_id, name, created_at) VALUES (?, ?, ?, 'Cat', ?)`, []any{f.SwimmerIDs[2], f.CompetitionID, f.OtherTeamID, now}},
		{`INSERT INTO referee (id, competition_id, user_id, unique_id, created_at) VALUES (?, ?, ?, 'ref_12345', ?)`, []any{f.RefereeID, f.CompetitionID, f.RefereeUserID, now}},
	}
	ctx := context.Background()
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s.q, s.args...); err != nil {
			t.Fatalf("seed %q: %v", s.q, err)
		}
	}
	return f
}
