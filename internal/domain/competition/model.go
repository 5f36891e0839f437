package competition

import (
	"errors"
	"strings"
	"time"
)

// Status constants.
const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusUpcoming, StatusActive, StatusPaused, StatusCompleted, StatusStopped}

// Defaults applied when a competition is created without explicit values.
const (
	DefaultLaneLength         = 25
	DefaultDoubleCountTimeout = 15
)

// Max length constants.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 5000
	MaxLocationLength    = 200
)

// Counting rejection reasons.
var (
	ErrNotStarted = errors.New("counting not allowed: competition has not started")
	ErrPaused     = errors.New("counting not allowed: competition is paused")
	ErrEnded      = errors.New("counting not allowed: competition has ended")
)

// Validation errors.
var (
	ErrEmptyName       = errors.New("competition name cannot be empty")
	ErrEmptyDate       = errors.New("competition date is required")
	ErrEmptyLocation   = errors.New("competition location is required")
	ErrEmptyStartTime  = errors.New("competition start time is required")
	ErrEmptyOrganizer  = errors.New("competition organizer is required")
	ErrInvalidLanes    = errors.New("number of lanes must be at least 1")
	ErrInvalidLength   = errors.New("lane length must be positive")
	ErrInvalidTimeout  = errors.New("double count timeout cannot be negative")
	ErrInvalidStatus   = errors.New("status must be one of: upcoming, active, paused, completed, stopped")
	ErrNameTooLong     = errors.New("competition name cannot exceed 200 characters")
	ErrDescriptionLong = errors.New("competition description cannot exceed 5000 characters")
	ErrLocationTooLong = errors.New("competition location cannot exceed 200 characters")
	ErrLaneOutOfRange  = errors.New("lane number is outside the competition's lanes")
)

// Competition is a 24-hour swimming event.
// INVARIANT: Status is one of ValidStatuses.
type Competition struct {
	ID                 string
	Name               string
	Description        string // markdown
	Date               string // YYYY-MM-DD
	StartTime          string // HH:MM
	EndTime            string
	Location           string
	NumberOfLanes      int
	LaneLength         int // metres
	DoubleCountTimeout int // seconds
	OrganizerID        string
	Status             string
	AutoStart          bool
	AutoFinish         bool
	ActualStartTime    *time.Time
	ActualEndTime      *time.Time
	ResultsPDF         string
	CreatedAt          time.Time
}

// Validate checks the competition's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (c *Competition) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(c.Description) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	if c.Date == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(c.Location) == "" {
		return ErrEmptyLocation
	}
	if len(c.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	if c.StartTime == "" {
		return ErrEmptyStartTime
	}
	if c.OrganizerID == "" {
		return ErrEmptyOrganizer
	}
	if c.NumberOfLanes < 1 {
		return ErrInvalidLanes
	}
	if c.LaneLength <= 0 {
		return ErrInvalidLength
	}
	if c.DoubleCountTimeout < 0 {
		return ErrInvalidTimeout
	}
	if !IsValidStatus(c.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// ApplyDefaults fills lane length and status when unset.
func (c *Competition) ApplyDefaults() {
	if c.LaneLength == 0 {
		c.LaneLength = DefaultLaneLength
	}
	if c.Status == "" {
		c.Status = StatusUpcoming
	}
}

// CountingAllowed reports whether referees may count laps right now.
// PRE: none
// POST: returns nil when Status is active, otherwise the rejection reason
func (c *Competition) CountingAllowed() error {
	switch c.Status {
	case StatusActive:
		return nil
	case StatusUpcoming:
		return ErrNotStarted
	case StatusPaused:
		return ErrPaused
	default:
		return ErrEnded
	}
}

// IsFinished returns true once the competition is completed or stopped.
func (c *Competition) IsFinished() bool {
	return c.Status == StatusCompleted || c.Status == StatusStopped
}

// HasLane reports whether lane is one of the competition's lanes.
func (c *Competition) HasLane(lane int) bool {
	return lane >= 1 && lane <= c.NumberOfLanes
}

// ApplyStatus moves the competition to status and stamps actual start/end times.
// PRE: status is valid
// POST: ActualStartTime set on first activation; ActualEndTime set when finished
func (c *Competition) ApplyStatus(status string, now time.Time) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	c.Status = status
	if status == StatusActive && c.ActualStartTime == nil {
		t := now
		c.ActualStartTime = &t
	}
	if c.IsFinished() && c.ActualEndTime == nil {
		t := now
		c.ActualEndTime = &t
	}
	return nil
}

// ElapsedSeconds returns seconds since the actual start, or 0 if not started.
func (c *Competition) ElapsedSeconds(now time.Time) int64 {
	if c.ActualStartTime == nil {
		return 0
	}
	end := now
	if c.ActualEndTime != nil {
		end = *c.ActualEndTime
	}
	return int64(end.Sub(*c.ActualStartTime).Seconds())
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}
