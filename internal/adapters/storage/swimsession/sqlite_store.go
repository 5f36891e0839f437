package swimsession

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"swimtrack/internal/adapters/storage"
	domain "swimtrack/internal/domain/swimsession"
)

const selectColumns = `SELECT id, competition_id, swimmer_id, team_id, lane_number, start_time,
	end_time, lap_count, is_active FROM swim_session`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new swim session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a SwimSession by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.SwimSession, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SwimSession{}, fmt.Errorf("swim session %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// List retrieves SwimSessions, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.SwimSession, error) {
	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx, selectColumns+where+" ORDER BY start_time DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SwimSession
	for rows.Next() {
		entity, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Start inserts a new active session.
// PRE: value.IsActive
// POST: session stored, or domain.ErrTeamAlreadySwimming if the partial unique index rejects it
func (s *SQLiteStore) Start(ctx context.Context, value domain.SwimSession) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO swim_session (id, competition_id, swimmer_id, team_id,
		lane_number, start_time, end_time, lap_count, is_active) VALUES (?, ?, ?, ?, ?, ?, NULL, ?, 1)`,
		value.ID, value.CompetitionID, value.SwimmerID, value.TeamID, value.LaneNumber,
		storage.FormatTime(value.StartTime), value.LapCount,
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrTeamAlreadySwimming
	}
	return err
}

// Save updates an existing session's end time, lap count and active flag.
// PRE: session exists
// POST: row updated or storage.ErrNotFound
func (s *SQLiteStore) Save(ctx context.Context, value domain.SwimSession) error {
	res, err := s.db.ExecContext(ctx, "UPDATE swim_session SET end_time = ?, lap_count = ?, is_active = ? WHERE id = ?",
		storage.FormatNullTime(value.EndTime), value.LapCount, storage.BoolToInt(value.IsActive), value.ID,
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrTeamAlreadySwimming
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("swim session %s: %w", value.ID, storage.ErrNotFound)
	}
	return nil
}

// EndActive closes active sessions matching filter in one statement.
// POST: no matching session remains active
func (s *SQLiteStore) EndActive(ctx context.Context, filter ListFilter, now time.Time) (int, error) {
	filter.IsActive = Active(true)
	where, args := filterClause(filter)
	args = append([]any{storage.FormatTime(now)}, args...)
	res, err := s.db.ExecContext(ctx, "UPDATE swim_session SET is_active = 0, end_time = ?"+where, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func filterClause(filter ListFilter) (string, []any) {
	var b strings.Builder
	var args []any
	b.WriteString(" WHERE 1=1")
	if filter.CompetitionID != "" {
		b.WriteString(" AND competition_id = ?")
		args = append(args, filter.CompetitionID)
	}
	if filter.TeamID != "" {
		b.WriteString(" AND team_id = ?")
		args = append(args, filter.TeamID)
	}
	if filter.SwimmerID != "" {
		b.WriteString(" AND swimmer_id = ?")
		args = append(args, filter.SwimmerID)
	}
	if filter.IsActive != nil {
		b.WriteString(" AND is_active = ?")
		args = append(args, storage.BoolToInt(*filter.IsActive))
	}
	return b.String(), args
}

func scanSession(scan func(dest ...any) error) (domain.SwimSession, error) {
	var ss domain.SwimSession
	var start string
	var end sql.NullString
	var active int
	err := scan(&ss.ID, &ss.CompetitionID, &ss.SwimmerID, &ss.TeamID, &ss.LaneNumber, &start,
		&end, &ss.LapCount, &active)
	if err != nil {
		return domain.SwimSession{}, err
	}
	ss.IsActive = active == 1
	if ss.StartTime, err = storage.ParseTime(start); err != nil {
		return domain.SwimSession{}, err
	}
	if ss.EndTime, err = storage.ParseNullTime(end); err != nil {
		return domain.SwimSession{}, err
	}
	return ss, nil
}
