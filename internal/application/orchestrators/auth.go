package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/domain/account"
	"swimtrack/internal/domain/referee"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByLogin(ctx context.Context, login string) (account.Account, error)
}

// LoginInput carries input for the login orchestrator.
// Login is an e-mail, or a referee's ref_NNNNN ID.
type LoginInput struct {
	Login    string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
}

// ExecuteLogin validates credentials and returns the account for session creation.
// PRE: Valid login and password provided
// POST: Returns the account on success
// INVARIANT: disabled accounts never log in
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (account.Account, error) {
	login := account.NormalizeLogin(input.Login)
	if login == "" || input.Password == "" {
		return account.Account{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return account.Account{}, fmt.Errorf("load account: %w", err)
		}
		slog.Info("auth_event", "event", "login_failed", "login", login, "reason", "not_found")
		return account.Account{}, ErrInvalidCredentials
	}

	switch err := acct.CanLogin(input.Password); {
	case errors.Is(err, account.ErrDisabled):
		slog.Info("auth_event", "event", "login_blocked", "login", login, "reason", "disabled")
		return account.Account{}, ErrAccountDisabled
	case err != nil:
		slog.Info("auth_event", "event", "login_failed", "login", login, "reason", "wrong_password")
		return account.Account{}, ErrInvalidCredentials
	}

	slog.Info("auth_event", "event", "login_success", "login", login, "role", acct.Role)
	return acct, nil
}

// AccountStoreForRegister defines the store interface needed by RegisterOrganizer.
type AccountStoreForRegister interface {
	GetByLogin(ctx context.Context, login string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// OrganizerNotifier sends the organizer welcome mail.
type OrganizerNotifier interface {
	OrganizerRegistered(ctx context.Context, login, name string) error
}

// RegisterOrganizerInput carries input for RegisterOrganizer.
type RegisterOrganizerInput struct {
	Email    string
	Password string
	Name     string
	Role     string // empty or "organizer"
}

// RegisterOrganizerDeps holds dependencies for RegisterOrganizer.
type RegisterOrganizerDeps struct {
	AccountStore AccountStoreForRegister
	Notifier     OrganizerNotifier // optional
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteRegisterOrganizer creates a self-registered organizer account.
// PRE: e-mail and password >= 8 chars
// POST: organizer account saved; welcome mail attempted
// INVARIANT: e-mail logins are unique; only organizers self-register
func ExecuteRegisterOrganizer(ctx context.Context, input RegisterOrganizerInput, deps RegisterOrganizerDeps) (account.Account, error) {
	if input.Role != "" && input.Role != account.RoleOrganizer {
		return account.Account{}, invalid(ErrOrganizerOnly)
	}
	acct := account.Account{
		ID:        deps.GenerateID(),
		Login:     account.NormalizeLogin(input.Email),
		Name:      strings.TrimSpace(input.Name),
		Role:      account.RoleOrganizer,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, invalid(err)
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, invalid(err)
	}

	if _, err := deps.AccountStore.GetByLogin(ctx, acct.Login); err == nil {
		return account.Account{}, invalid(account.ErrDuplicateLogin)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return account.Account{}, fmt.Errorf("check existing account: %w", err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		if errors.Is(err, account.ErrDuplicateLogin) {
			return account.Account{}, invalid(err)
		}
		return account.Account{}, fmt.Errorf("save account: %w", err)
	}
	slog.Info("auth_event", "event", "organizer_registered", "login", acct.Login)

	if deps.Notifier != nil {
		if err := deps.Notifier.OrganizerRegistered(ctx, acct.Login, acct.Name); err != nil {
			slog.Warn("notification_event", "event", "notification_failed", "kind", "organizer_registration", "login", acct.Login, "error", err)
		}
	}
	return acct, nil
}

// AccountStoreForReset defines the store interface needed by ResetPassword.
type AccountStoreForReset interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// PasswordResetNotifier tells an account holder about a reset.
type PasswordResetNotifier interface {
	PasswordReset(ctx context.Context, login, name string) error
}

// ResetPasswordInput carries input for ResetPassword.
type ResetPasswordInput struct {
	Actor  Actor
	UserID string
}

// ResetPasswordDeps holds dependencies for ResetPassword.
type ResetPasswordDeps struct {
	AccountStore     AccountStoreForReset
	Notifier         PasswordResetNotifier // optional
	GeneratePassword func() (string, error)
}

// ExecuteResetPassword replaces a user's password with a generated one.
// PRE: actor is an admin
// POST: returns the new plaintext password once; mails a notice without it
func ExecuteResetPassword(ctx context.Context, input ResetPasswordInput, deps ResetPasswordDeps) (string, error) {
	if !input.Actor.IsAdmin() {
		return "", ErrForbidden
	}
	if input.UserID == "" {
		return "", invalid(errors.New("userId is required"))
	}
	acct, err := deps.AccountStore.GetByID(ctx, input.UserID)
	if err != nil {
		return "", lookup("User", err)
	}
	if acct.Disabled {
		return "", &NotFoundError{Resource: "User"}
	}

	generate := deps.GeneratePassword
	if generate == nil {
		generate = referee.GeneratePassword
	}
	password, err := generate()
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	if err := acct.SetPassword(password); err != nil {
		return "", err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", fmt.Errorf("save account: %w", err)
	}
	slog.Info("auth_event", "event", "password_reset", "user_id", acct.ID, "by", input.Actor.AccountID)

	if deps.Notifier != nil && acct.Role != account.RoleReferee {
		if err := deps.Notifier.PasswordReset(ctx, acct.Login, acct.Name); err != nil {
			slog.Warn("notification_event", "event", "notification_failed", "kind", "password_reset", "user_id", acct.ID, "error", err)
		}
	}
	return password, nil
}

// AccountStoreForSeed defines the store interface needed by SeedAdmin.
type AccountStoreForSeed interface {
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// SeedAdminInput carries the bootstrap admin credentials.
type SeedAdminInput struct {
	Email    string
	Password string // generated when empty
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForSeed
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the first admin account on an empty database.
// PRE: none
// POST: an admin exists when the store was empty; returns the plaintext
// password when one was generated
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (string, error) {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	password := input.Password
	generated := ""
	if password == "" {
		// Two generated words are shorter than an admin should carry.
		a, err := referee.GeneratePassword()
		if err != nil {
			return "", err
		}
		b, err := referee.GeneratePassword()
		if err != nil {
			return "", err
		}
		password = a + b
		generated = password
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Login:     account.NormalizeLogin(input.Email),
		Name:      "Administrator",
		Role:      account.RoleAdmin,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return "", fmt.Errorf("admin account: %w", err)
	}
	if err := acct.SetPassword(password); err != nil {
		return "", fmt.Errorf("admin account: %w", err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", fmt.Errorf("save admin: %w", err)
	}
	slog.Info("auth_event", "event", "admin_seeded", "login", acct.Login, "generated_password", generated != "")
	return generated, nil
}
