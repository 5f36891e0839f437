package referee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"swimtrack/internal/adapters/storage"
	domain "swimtrack/internal/domain/referee"
)

const selectColumns = "SELECT id, competition_id, user_id, unique_id, email, created_at FROM referee"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new referee store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Referee by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Referee, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanReferee(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Referee{}, fmt.Errorf("referee %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// List retrieves Referees ordered by login ID.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Referee, error) {
	var b strings.Builder
	var args []any
	b.WriteString(selectColumns + " WHERE 1=1")
	if filter.CompetitionID != "" {
		b.WriteString(" AND competition_id = ?")
		args = append(args, filter.CompetitionID)
	}
	if filter.UserID != "" {
		b.WriteString(" AND user_id = ?")
		args = append(args, filter.UserID)
	}
	b.WriteString(" ORDER BY unique_id")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Referee
	for rows.Next() {
		entity, err := scanReferee(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Save persists a Referee (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Referee) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO referee (id, competition_id, user_id, unique_id, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email=excluded.email`,
		entity.ID, entity.CompetitionID, entity.UserID, entity.UniqueID, entity.Email,
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// Delete removes a Referee. Laps they counted are kept with no referee.
// PRE: id is non-empty
// POST: referee row gone; lap_count.referee_id cleared
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE lap_count SET referee_id = NULL WHERE referee_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM referee WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("referee %s: %w", id, storage.ErrNotFound)
	}
	return tx.Commit()
}

func scanReferee(scan func(dest ...any) error) (domain.Referee, error) {
	var r domain.Referee
	var createdAt string
	if err := scan(&r.ID, &r.CompetitionID, &r.UserID, &r.UniqueID, &r.Email, &createdAt); err != nil {
		return domain.Referee{}, err
	}
	var err error
	if r.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Referee{}, err
	}
	return r, nil
}
