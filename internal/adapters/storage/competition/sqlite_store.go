package competition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"swimtrack/internal/adapters/storage"
	domain "swimtrack/internal/domain/competition"
)

const selectColumns = `SELECT id, name, description, date, start_time, end_time, location,
	number_of_lanes, lane_length, double_count_timeout, organizer_id, status,
	auto_start, auto_finish, actual_start_time, actual_end_time, results_pdf, created_at
	FROM competition`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new competition store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Competition by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Competition, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanCompetition(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Competition{}, fmt.Errorf("competition %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// List retrieves Competitions, newest event date first.
// PRE: none
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Competition, error) {
	var b strings.Builder
	var args []any
	b.WriteString(selectColumns + " WHERE 1=1")
	if filter.OrganizerID != "" {
		b.WriteString(" AND organizer_id = ?")
		args = append(args, filter.OrganizerID)
	}
	if filter.Status != "" {
		b.WriteString(" AND status = ?")
		args = append(args, filter.Status)
	}
	b.WriteString(" ORDER BY date DESC, created_at DESC")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Competition
	for rows.Next() {
		entity, err := scanCompetition(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Save persists a Competition (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Competition) error {
	fields := []string{
		"id", "name", "description", "date", "start_time", "end_time", "location",
		"number_of_lanes", "lane_length", "double_count_timeout", "organizer_id", "status",
		"auto_start", "auto_finish", "actual_start_time", "actual_end_time", "results_pdf", "created_at",
	}
	placeholders := make([]string, len(fields))
	var updates []string
	for i, f := range fields {
		placeholders[i] = "?"
		if f != "id" && f != "created_at" {
			updates = append(updates, f+"=excluded."+f)
		}
	}
	query := fmt.Sprintf(
		"INSERT INTO competition (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Description,
		entity.Date,
		entity.StartTime,
		entity.EndTime,
		entity.Location,
		entity.NumberOfLanes,
		entity.LaneLength,
		entity.DoubleCountTimeout,
		entity.OrganizerID,
		entity.Status,
		storage.BoolToInt(entity.AutoStart),
		storage.BoolToInt(entity.AutoFinish),
		storage.FormatNullTime(entity.ActualStartTime),
		storage.FormatNullTime(entity.ActualEndTime),
		entity.ResultsPDF,
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// Delete removes a Competition and everything that belongs to it, including
// the login accounts of its referees.
// PRE: id is non-empty
// POST: No rows reference id; counts report what was removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) (DeleteCounts, error) {
	var counts DeleteCounts
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM competition WHERE id = ?", id).Scan(&exists); err != nil {
		return counts, err
	}
	if exists == 0 {
		return counts, fmt.Errorf("competition %s: %w", id, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM account WHERE id IN (SELECT user_id FROM referee WHERE competition_id = ?)", id); err != nil {
		return counts, err
	}

	steps := []struct {
		table string
		dst   *int
	}{
		{"lap_count", &counts.LapCounts},
		{"swim_session", &counts.SwimSessions},
		{"swimmer", &counts.Swimmers},
		{"referee", &counts.Referees},
		{"team", &counts.Teams},
	}
	for _, step := range steps {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+step.table+" WHERE competition_id = ?", id)
		if err != nil {
			return counts, fmt.Errorf("delete %s: %w", step.table, err)
		}
		n, _ := res.RowsAffected()
		*step.dst = int(n)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM competition WHERE id = ?", id); err != nil {
		return counts, err
	}
	return counts, tx.Commit()
}

func scanCompetition(scan func(dest ...any) error) (domain.Competition, error) {
	var c domain.Competition
	var autoStart, autoFinish int
	var actualStart, actualEnd sql.NullString
	var createdAt string
	err := scan(
		&c.ID, &c.Name, &c.Description, &c.Date, &c.StartTime, &c.EndTime, &c.Location,
		&c.NumberOfLanes, &c.LaneLength, &c.DoubleCountTimeout, &c.OrganizerID, &c.Status,
		&autoStart, &autoFinish, &actualStart, &actualEnd, &c.ResultsPDF, &createdAt,
	)
	if err != nil {
		return domain.Competition{}, err
	}
	c.AutoStart = autoStart == 1
	c.AutoFinish = autoFinish == 1
	if c.ActualStartTime, err = storage.ParseNullTime(actualStart); err != nil {
		return domain.Competition{}, err
	}
	if c.ActualEndTime, err = storage.ParseNullTime(actualEnd); err != nil {
		return domain.Competition{}, err
	}
	if c.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Competition{}, err
	}
	return c, nil
}
