package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxLoginLength = 254
	MaxNameLength  = 100
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// bcryptCost is the work factor used for password hashes.
const bcryptCost = 12

// Role constants
const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
	RoleReferee   = "referee"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleOrganizer, RoleReferee}

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyLogin       = errors.New("email cannot be empty")
	ErrLoginTooLong     = errors.New("email cannot exceed 254 characters")
	ErrNameTooLong      = errors.New("name cannot exceed 100 characters")
	ErrInvalidRole      = errors.New("role must be one of: admin, organizer, referee")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("invalid credentials")
	ErrDisabled         = errors.New("account is disabled")
	ErrDuplicateLogin   = errors.New("email already registered")
)

// Account holds state for a login account.
// Referee accounts log in with their ref_NNNNN ID instead of an e-mail.
type Account struct {
	ID           string
	Login        string // e-mail, or referee unique ID
	Name         string
	PasswordHash string
	Role         string
	Disabled     bool
	CreatedAt    time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Login) == "" {
		return ErrEmptyLogin
	}
	if len(a.Login) > MaxLoginLength {
		return ErrLoginTooLong
	}
	if len(a.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !isValidRole(a.Role) {
		return ErrInvalidRole
	}
	if a.Role != RoleReferee && !strings.Contains(a.Login, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeLogin lower-cases e-mail logins so lookups are case-insensitive.
func NormalizeLogin(login string) string {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return strings.ToLower(login)
	}
	return login
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 8 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// CanLogin checks the password and the disabled flag.
func (a *Account) CanLogin(plaintext string) error {
	if err := a.CheckPassword(plaintext); err != nil {
		return err
	}
	if a.Disabled {
		return ErrDisabled
	}
	return nil
}

// IsAdmin returns true if the account has admin role.
// INVARIANT: Account fields are not mutated
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManageCompetitions returns true for organizers and admins.
// INVARIANT: Account fields are not mutated
func (a *Account) CanManageCompetitions() bool {
	return a.Role == RoleAdmin || a.Role == RoleOrganizer
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
