package orchestrators

import (
	"errors"
	"fmt"

	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/domain/account"
	"swimtrack/internal/domain/competition"
	"swimtrack/internal/domain/lapcount"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrForbidden          = errors.New("you do not have access to this resource")
	ErrOrganizerOnly      = errors.New("only organizer accounts can be registered")
)

// ValidationError marks a rejection caused by bad input.
// Its message is the wrapped domain message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error {
	return &ValidationError{Err: err}
}

// NotFoundError reports a missing resource by kind, e.g. "Competition".
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// Is lets callers match on storage.ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == storage.ErrNotFound }

// TooSoonError is a lap rejected by the double-count guard.
type TooSoonError struct {
	RetryAfter int // seconds
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("%s, retry in %ds", e.Unwrap(), e.RetryAfter)
}

func (e *TooSoonError) Unwrap() error { return lapcount.ErrTooSoon }

// lookup turns a store miss into a NotFoundError and wraps anything else.
func lookup(resource string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return fmt.Errorf("load %s: %w", resource, err)
}

// Actor is the authenticated caller of an orchestrator.
type Actor struct {
	AccountID string
	Role      string
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == account.RoleAdmin }

// canManage reports whether the actor may change comp and its teams,
// swimmers and referees. A zero Actor is trusted; it is used by the CLI.
func (a Actor) canManage(comp competition.Competition) bool {
	if a == (Actor{}) || a.IsAdmin() {
		return true
	}
	return a.Role == account.RoleOrganizer && comp.OrganizerID == a.AccountID
}

func authorize(actor Actor, comp competition.Competition) error {
	if !actor.canManage(comp) {
		return ErrForbidden
	}
	return nil
}
