package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"swimtrack/internal/adapters/storage"
	refstore "swimtrack/internal/adapters/storage/referee"
	"swimtrack/internal/domain/account"
	"swimtrack/internal/domain/referee"
)

// RefereeStore defines the store interface needed by referee orchestrators.
type RefereeStore interface {
	GetByID(ctx context.Context, id string) (referee.Referee, error)
	List(ctx context.Context, filter refstore.ListFilter) ([]referee.Referee, error)
	Save(ctx context.Context, r referee.Referee) error
	Delete(ctx context.Context, id string) error
}

// RefereeAccountStore defines the account operations referee orchestrators need.
type RefereeAccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByLogin(ctx context.Context, login string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Delete(ctx context.Context, id string) error
}

// RefereeDeps holds dependencies for the referee orchestrators.
type RefereeDeps struct {
	CompetitionStore CompetitionReader
	RefereeStore     RefereeStore
	AccountStore     RefereeAccountStore
	GenerateID       func() string
	Now              func() time.Time
	// Optional; default to the referee package generators.
	GenerateLoginID  func(taken map[string]bool) (string, error)
	GeneratePassword func() (string, error)
}

func (d RefereeDeps) loginID(taken map[string]bool) (string, error) {
	if d.GenerateLoginID != nil {
		return d.GenerateLoginID(taken)
	}
	return referee.GenerateUniqueLoginID(taken)
}

func (d RefereeDeps) password() (string, error) {
	if d.GeneratePassword != nil {
		return d.GeneratePassword()
	}
	return referee.GeneratePassword()
}

// CreateRefereeInput carries input for CreateReferee.
type CreateRefereeInput struct {
	Actor         Actor
	ID            string // optional
	CompetitionID string
	Email         string
}

// RefereeWithPassword is a referee plus its one-time plaintext password.
type RefereeWithPassword struct {
	Referee  referee.Referee
	Password string
}

// ExecuteCreateReferee creates a referee and its login account.
// PRE: competition input.CompetitionID exists
// POST: referee and account saved; the password is returned once and never stored in plaintext
// INVARIANT: referee login IDs are unique across all competitions
func ExecuteCreateReferee(ctx context.Context, input CreateRefereeInput, deps RefereeDeps) (RefereeWithPassword, error) {
	if input.CompetitionID == "" {
		return RefereeWithPassword{}, invalid(referee.ErrEmptyComp)
	}
	comp, err := deps.CompetitionStore.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return RefereeWithPassword{}, lookup("Competition", err)
	}
	if err := authorize(input.Actor, comp); err != nil {
		return RefereeWithPassword{}, err
	}

	all, err := deps.RefereeStore.List(ctx, refstore.ListFilter{})
	if err != nil {
		return RefereeWithPassword{}, fmt.Errorf("list referees: %w", err)
	}
	taken := make(map[string]bool, len(all))
	for _, r := range all {
		taken[r.UniqueID] = true
	}
	loginID, err := deps.loginID(taken)
	if err != nil {
		return RefereeWithPassword{}, fmt.Errorf("allocate login: %w", err)
	}
	// Accounts may hold logins whose referee rows belong to another backend.
	if _, err := deps.AccountStore.GetByLogin(ctx, loginID); err == nil {
		taken[loginID] = true
		if loginID, err = deps.loginID(taken); err != nil {
			return RefereeWithPassword{}, fmt.Errorf("allocate login: %w", err)
		}
	}
	password, err := deps.password()
	if err != nil {
		return RefereeWithPassword{}, fmt.Errorf("generate password: %w", err)
	}

	now := deps.Now()
	acct := account.Account{
		ID:        deps.GenerateID(),
		Login:     loginID,
		Name:      "Referee " + loginID,
		Role:      account.RoleReferee,
		CreatedAt: now,
	}
	if err := acct.SetPassword(password); err != nil {
		return RefereeWithPassword{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return RefereeWithPassword{}, fmt.Errorf("save referee account: %w", err)
	}

	ref := referee.Referee{
		ID:            input.ID,
		UserID:        acct.ID,
		UniqueID:      loginID,
		CompetitionID: comp.ID,
		Email:         strings.TrimSpace(input.Email),
		CreatedAt:     now,
	}
	if ref.ID == "" {
		ref.ID = deps.GenerateID()
	}
	if err := ref.Validate(); err != nil {
		_ = deps.AccountStore.Delete(ctx, acct.ID)
		return RefereeWithPassword{}, invalid(err)
	}
	if err := deps.RefereeStore.Save(ctx, ref); err != nil {
		_ = deps.AccountStore.Delete(ctx, acct.ID)
		return RefereeWithPassword{}, fmt.Errorf("save referee: %w", err)
	}

	slog.Info("auth_event", "event", "referee_created", "referee_id", ref.ID, "login", loginID, "competition_id", comp.ID)
	return RefereeWithPassword{Referee: ref, Password: password}, nil
}

// RefereeRef identifies a referee for delete and password reset.
type RefereeRef struct {
	Actor Actor
	ID    string
}

func loadReferee(ctx context.Context, input RefereeRef, deps RefereeDeps) (referee.Referee, error) {
	ref, err := deps.RefereeStore.GetByID(ctx, input.ID)
	if err != nil {
		return referee.Referee{}, lookup("Referee", err)
	}
	comp, err := deps.CompetitionStore.GetByID(ctx, ref.CompetitionID)
	if err != nil {
		return referee.Referee{}, lookup("Competition", err)
	}
	if err := authorize(input.Actor, comp); err != nil {
		return referee.Referee{}, err
	}
	return ref, nil
}

// ExecuteDeleteReferee removes a referee and its login account.
// PRE: referee input.ID exists
// POST: referee and account removed; laps it counted are kept without a referee
func ExecuteDeleteReferee(ctx context.Context, input RefereeRef, deps RefereeDeps) error {
	ref, err := loadReferee(ctx, input, deps)
	if err != nil {
		return err
	}
	if err := deps.RefereeStore.Delete(ctx, ref.ID); err != nil {
		return lookup("Referee", err)
	}
	if err := deps.AccountStore.Delete(ctx, ref.UserID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete referee account: %w", err)
	}
	slog.Info("auth_event", "event", "referee_deleted", "referee_id", ref.ID, "login", ref.UniqueID)
	return nil
}

// ExecuteResetRefereePassword gives a referee a fresh generated password.
// PRE: referee input.ID exists with its account
// POST: account password replaced; the new plaintext is returned once
func ExecuteResetRefereePassword(ctx context.Context, input RefereeRef, deps RefereeDeps) (string, error) {
	ref, err := loadReferee(ctx, input, deps)
	if err != nil {
		return "", err
	}
	acct, err := deps.AccountStore.GetByID(ctx, ref.UserID)
	if err != nil {
		return "", lookup("Referee account", err)
	}
	password, err := deps.password()
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	if err := acct.SetPassword(password); err != nil {
		return "", err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", fmt.Errorf("save referee account: %w", err)
	}
	slog.Info("auth_event", "event", "referee_password_reset", "referee_id", ref.ID, "login", ref.UniqueID)
	return password, nil
}
