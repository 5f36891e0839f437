package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"swimtrack/internal/adapters/storage"
	domain "swimtrack/internal/domain/team"
)

const selectColumns = "SELECT id, competition_id, name, color, logo, assigned_lane, created_at FROM team"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new team store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Team by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Team, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanTeam(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Team{}, fmt.Errorf("team %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// List retrieves Teams ordered by lane and name.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Team, error) {
	var b strings.Builder
	var args []any
	b.WriteString(selectColumns + " WHERE 1=1")
	if filter.CompetitionID != "" {
		b.WriteString(" AND competition_id = ?")
		args = append(args, filter.CompetitionID)
	}
	if filter.LaneNumber > 0 {
		b.WriteString(" AND assigned_lane = ?")
		args = append(args, filter.LaneNumber)
	}
	b.WriteString(" ORDER BY assigned_lane, name")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Team
	for rows.Next() {
		entity, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Save persists a Team (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Team) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO team (id, competition_id, name, color, logo, assigned_lane, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, color=excluded.color, logo=excluded.logo, assigned_lane=excluded.assigned_lane`,
		entity.ID, entity.CompetitionID, entity.Name, entity.Color, entity.Logo, entity.AssignedLane,
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// Delete removes a Team together with its swimmers, sessions and laps.
// PRE: id is non-empty
// POST: No rows reference the team
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM lap_count WHERE team_id = ?",
		"DELETE FROM swim_session WHERE team_id = ?",
		"DELETE FROM swimmer WHERE team_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM team WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("team %s: %w", id, storage.ErrNotFound)
	}
	return tx.Commit()
}

func scanTeam(scan func(dest ...any) error) (domain.Team, error) {
	var t domain.Team
	var createdAt string
	if err := scan(&t.ID, &t.CompetitionID, &t.Name, &t.Color, &t.Logo, &t.AssignedLane, &createdAt); err != nil {
		return domain.Team{}, err
	}
	var err error
	if t.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Team{}, err
	}
	return t, nil
}
