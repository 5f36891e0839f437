package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"swimtrack/internal/adapters/storage"
	domain "swimtrack/internal/domain/account"
)

const selectColumns = "SELECT id, login, name, password_hash, role, disabled, created_at FROM account"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("account %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// GetByLogin retrieves an Account by e-mail or referee login.
// PRE: login is normalized
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByLogin(ctx context.Context, login string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE login = ?", login)
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("account %s: %w", login, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); a taken login yields domain.ErrDuplicateLogin
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	fields := []string{"id", "login", "name", "password_hash", "role", "disabled", "created_at"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?"}
	updates := []string{
		"login=excluded.login",
		"name=excluded.name",
		"password_hash=excluded.password_hash",
		"role=excluded.role",
		"disabled=excluded.disabled",
	}

	query := fmt.Sprintf(
		"INSERT INTO account (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Login,
		entity.Name,
		entity.PasswordHash,
		entity.Role,
		storage.BoolToInt(entity.Disabled),
		storage.FormatTime(entity.CreatedAt),
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicateLogin
	}
	return err
}

// Delete removes an Account from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves Accounts based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	var b strings.Builder
	var args []any

	b.WriteString(selectColumns)
	if filter.Role != "" {
		b.WriteString(" WHERE role = ?")
		args = append(args, filter.Role)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	b.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&n)
	return n, err
}

func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var a domain.Account
	var disabled int
	var createdAt string
	if err := scan(&a.ID, &a.Login, &a.Name, &a.PasswordHash, &a.Role, &disabled, &createdAt); err != nil {
		return domain.Account{}, err
	}
	a.Disabled = disabled == 1
	var err error
	if a.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}
