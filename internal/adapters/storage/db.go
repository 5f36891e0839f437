package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrNotFound is returned by every backend when a row does not exist.
var ErrNotFound = errors.New("not found")

// TimeLayout is the stored timestamp format. Fixed width UTC so that
// string comparison in SQL orders the same way as time comparison.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatNullTime renders t or returns nil for a NULL column.
func FormatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// ParseTime parses a stored timestamp. RFC3339 is accepted for rows written by hand.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// ParseNullTime parses a nullable timestamp column.
func ParseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// migration is one schema step. Steps run in order inside a transaction.
type migration func(tx *sql.Tx) error

// migrations is the ordered schema history. Append only.
var migrations = []migration{
	migrateBaseline,
	migrateIndexes,
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return len(migrations)
}

// SchemaVersion returns the applied schema version, 0 for an empty database.
// PRE: db is a valid database connection
// POST: returns the highest applied version
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL, applied_at TEXT NOT NULL)"); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// MigrateDB enables the connection pragmas and applies pending migrations.
// PRE: db is a valid database connection; path is used for logging only
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, path string) error {
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for v := current; v < len(migrations); v++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := migrations[v](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)", v+1, FormatTime(time.Now())); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("schema_migrated", "path", path, "version", v+1)
	}
	return nil
}

func migrateBaseline(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		login TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		disabled INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS competition (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL,
		number_of_lanes INTEGER NOT NULL,
		lane_length INTEGER NOT NULL DEFAULT 25,
		double_count_timeout INTEGER NOT NULL DEFAULT 15,
		organizer_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'upcoming',
		auto_start INTEGER NOT NULL DEFAULT 0,
		auto_finish INTEGER NOT NULL DEFAULT 0,
		actual_start_time TEXT,
		actual_end_time TEXT,
		results_pdf TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS team (
		id TEXT PRIMARY KEY,
		competition_id TEXT NOT NULL REFERENCES competition(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		logo TEXT NOT NULL DEFAULT '',
		assigned_lane INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS swimmer (
		id TEXT PRIMARY KEY,
		competition_id TEXT NOT NULL REFERENCES competition(id) ON DELETE CASCADE,
		team_id TEXT NOT NULL REFERENCES team(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		is_under_12 INTEGER NOT NULL DEFAULT 0,
		parent_name TEXT NOT NULL DEFAULT '',
		parent_contact TEXT NOT NULL DEFAULT '',
		parent_present INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS referee (
		id TEXT PRIMARY KEY,
		competition_id TEXT NOT NULL REFERENCES competition(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		unique_id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS swim_session (
		id TEXT PRIMARY KEY,
		competition_id TEXT NOT NULL REFERENCES competition(id) ON DELETE CASCADE,
		swimmer_id TEXT NOT NULL REFERENCES swimmer(id) ON DELETE CASCADE,
		team_id TEXT NOT NULL REFERENCES team(id) ON DELETE CASCADE,
		lane_number INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		lap_count INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS lap_count (
		id TEXT PRIMARY KEY,
		competition_id TEXT NOT NULL REFERENCES competition(id) ON DELETE CASCADE,
		lane_number INTEGER NOT NULL,
		team_id TEXT NOT NULL REFERENCES team(id) ON DELETE CASCADE,
		swimmer_id TEXT NOT NULL REFERENCES swimmer(id) ON DELETE CASCADE,
		referee_id TEXT REFERENCES referee(id) ON DELETE SET NULL,
		lap_number INTEGER NOT NULL,
		timestamp TEXT NOT NULL
	);
	`)
	return err
}

func migrateIndexes(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE INDEX IF NOT EXISTS idx_competition_organizer ON competition(organizer_id);
	CREATE INDEX IF NOT EXISTS idx_team_competition ON team(competition_id, assigned_lane);
	CREATE INDEX IF NOT EXISTS idx_swimmer_team ON swimmer(team_id);
	CREATE INDEX IF NOT EXISTS idx_referee_competition ON referee(competition_id);
	CREATE INDEX IF NOT EXISTS idx_lap_count_team ON lap_count(competition_id, team_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_lap_count_swimmer ON lap_count(competition_id, swimmer_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_swim_session_team ON swim_session(competition_id, team_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_swim_session_one_active
		ON swim_session(competition_id, team_id) WHERE is_active = 1;
	`)
	return err
}

// BoolToInt maps a bool onto SQLite's 0/1 convention.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
