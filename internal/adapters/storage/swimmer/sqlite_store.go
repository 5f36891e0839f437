package swimmer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"swimtrack/internal/adapters/storage"
	domain "swimtrack/internal/domain/swimmer"
)

const selectColumns = `SELECT id, competition_id, team_id, name, is_under_12, parent_name,
	parent_contact, parent_present, created_at FROM swimmer`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new swimmer store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Swimmer by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Swimmer, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanSwimmer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Swimmer{}, fmt.Errorf("swimmer %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// List retrieves Swimmers ordered by name.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Swimmer, error) {
	var b strings.Builder
	var args []any
	b.WriteString(selectColumns + " WHERE 1=1")
	if filter.CompetitionID != "" {
		b.WriteString(" AND competition_id = ?")
		args = append(args, filter.CompetitionID)
	}
	if filter.TeamID != "" {
		b.WriteString(" AND team_id = ?")
		args = append(args, filter.TeamID)
	}
	b.WriteString(" ORDER BY name")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Swimmer
	for rows.Next() {
		entity, err := scanSwimmer(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Save persists a Swimmer (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Swimmer) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO swimmer (id, competition_id, team_id, name, is_under_12,
		parent_name, parent_contact, parent_present, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET team_id=excluded.team_id, name=excluded.name,
		is_under_12=excluded.is_under_12, parent_name=excluded.parent_name,
		parent_contact=excluded.parent_contact, parent_present=excluded.parent_present`,
		entity.ID, entity.CompetitionID, entity.TeamID, entity.Name, storage.BoolToInt(entity.IsUnder12),
		entity.ParentName, entity.ParentContact, storage.BoolToInt(entity.ParentPresent),
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// Delete removes a Swimmer together with their sessions and laps.
// PRE: id is non-empty
// POST: No rows reference the swimmer
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM lap_count WHERE swimmer_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM swim_session WHERE swimmer_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM swimmer WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("swimmer %s: %w", id, storage.ErrNotFound)
	}
	return tx.Commit()
}

func scanSwimmer(scan func(dest ...any) error) (domain.Swimmer, error) {
	var s domain.Swimmer
	var under12, present int
	var createdAt string
	err := scan(&s.ID, &s.CompetitionID, &s.TeamID, &s.Name, &under12,
		&s.ParentName, &s.ParentContact, &present, &createdAt)
	if err != nil {
		return domain.Swimmer{}, err
	}
	s.IsUnder12 = under12 == 1
	s.ParentPresent = present == 1
	if s.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Swimmer{}, err
	}
	return s, nil
}
