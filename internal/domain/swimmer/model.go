package swimmer

import (
	"errors"
	"strings"
	"time"
)

// MaxNameLength is the maximum swimmer name length.
const MaxNameLength = 100

// Domain errors.
var (
	ErrEmptyName            = errors.New("swimmer name cannot be empty")
	ErrNameTooLong          = errors.New("swimmer name cannot exceed 100 characters")
	ErrEmptyTeam            = errors.New("swimmer team is required")
	ErrEmptyComp            = errors.New("swimmer competition is required")
	ErrParentNameRequired   = errors.New("parentName is required for swimmers under 12")
	ErrParentContactMissing = errors.New("parentContact is required for swimmers under 12")
	ErrTeamMismatch         = errors.New("team does not belong to this competition")
)

// Swimmer is a team member who swims sessions.
// INVARIANT: IsUnder12 implies ParentName and ParentContact are set.
type Swimmer struct {
	ID            string
	Name          string
	TeamID        string
	CompetitionID string
	IsUnder12     bool
	ParentName    string
	ParentContact string
	ParentPresent bool
	CreatedAt     time.Time
}

// Validate checks the swimmer's invariants.
// PRE: none
// POST: returns nil if valid, error otherwise
func (s *Swimmer) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if s.TeamID == "" {
		return ErrEmptyTeam
	}
	if s.CompetitionID == "" {
		return ErrEmptyComp
	}
	if s.IsUnder12 {
		if strings.TrimSpace(s.ParentName) == "" {
			return ErrParentNameRequired
		}
		if strings.TrimSpace(s.ParentContact) == "" {
			return ErrParentContactMissing
		}
	}
	return nil
}

// Normalize trims the parent fields.
func (s *Swimmer) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.ParentName = strings.TrimSpace(s.ParentName)
	s.ParentContact = strings.TrimSpace(s.ParentContact)
}
