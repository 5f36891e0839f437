package team

import (
	"errors"
	"strings"
	"time"
)

// Max length constants.
const (
	MaxNameLength  = 100
	MaxColorLength = 32
)

// Domain errors.
var (
	ErrEmptyName      = errors.New("team name cannot be empty")
	ErrNameTooLong    = errors.New("team name cannot exceed 100 characters")
	ErrEmptyColor     = errors.New("team color is required")
	ErrColorTooLong   = errors.New("team color cannot exceed 32 characters")
	ErrEmptyComp      = errors.New("team competition is required")
	ErrInvalidLane    = errors.New("assigned lane must be at least 1")
	ErrColorLaneTaken = errors.New("a team with the same color already exists on this lane")
)

// Team holds state for a relay team occupying one lane.
// INVARIANT: (CompetitionID, Color, AssignedLane) is unique across teams.
type Team struct {
	ID            string
	Name          string
	Color         string
	Logo          string
	CompetitionID string
	AssignedLane  int
	CreatedAt     time.Time
}

// Validate checks the team's invariants.
// PRE: none
// POST: returns nil if valid, error otherwise
func (t *Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(t.Color) == "" {
		return ErrEmptyColor
	}
	if len(t.Color) > MaxColorLength {
		return ErrColorTooLong
	}
	if t.CompetitionID == "" {
		return ErrEmptyComp
	}
	if t.AssignedLane < 1 {
		return ErrInvalidLane
	}
	return nil
}

// ConflictsWith reports whether other would break the color-per-lane rule.
// A team never conflicts with itself.
func (t *Team) ConflictsWith(other Team) bool {
	if t.ID != "" && t.ID == other.ID {
		return false
	}
	return t.CompetitionID == other.CompetitionID &&
		strings.EqualFold(t.Color, other.Color) &&
		t.AssignedLane == other.AssignedLane
}

// FindConflict returns the first team in existing that conflicts with t.
func (t *Team) FindConflict(existing []Team) (Team, bool) {
	for _, o := range existing {
		if t.ConflictsWith(o) {
			return o, true
		}
	}
	return Team{}, false
}
