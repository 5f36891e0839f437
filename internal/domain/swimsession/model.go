package swimsession

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrTeamAlreadySwimming = errors.New("team already has an active swimmer")
	ErrNoActiveSession     = errors.New("no active swim session for this swimmer")
	ErrAlreadyEnded        = errors.New("swim session has already ended")
	ErrMissingFields       = errors.New("competitionId, swimmerId, teamId and laneNumber are required")
	ErrSwimmerNotInTeam    = errors.New("swimmer does not belong to this team")
)

// SwimSession is one swimmer's stint in the water for a team.
// INVARIANT: at most one active session per (CompetitionID, TeamID).
type SwimSession struct {
	ID            string
	CompetitionID string
	SwimmerID     string
	TeamID        string
	LaneNumber    int
	StartTime     time.Time
	EndTime       *time.Time
	LapCount      int
	IsActive      bool
}

// New creates an active session with no laps.
// PRE: ids are non-empty, lane >= 1
// POST: IsActive, LapCount == 0, StartTime == now
func New(id, competitionID, swimmerID, teamID string, lane int, now time.Time) (SwimSession, error) {
	s := SwimSession{
		ID:            id,
		CompetitionID: competitionID,
		SwimmerID:     swimmerID,
		TeamID:        teamID,
		LaneNumber:    lane,
		StartTime:     now,
		IsActive:      true,
	}
	if err := s.Validate(); err != nil {
		return SwimSession{}, err
	}
	return s, nil
}

// Validate checks the required references.
func (s *SwimSession) Validate() error {
	if s.CompetitionID == "" || s.SwimmerID == "" || s.TeamID == "" || s.LaneNumber < 1 {
		return ErrMissingFields
	}
	return nil
}

// End closes the session. History is kept.
// PRE: IsActive
// POST: !IsActive, EndTime == now
func (s *SwimSession) End(now time.Time) error {
	if !s.IsActive {
		return ErrAlreadyEnded
	}
	t := now
	s.IsActive = false
	s.EndTime = &t
	return nil
}

// RecordLap bumps the lap counter of an active session.
func (s *SwimSession) RecordLap() error {
	if !s.IsActive {
		return ErrNoActiveSession
	}
	s.LapCount++
	return nil
}

// WaterSeconds returns the time spent swimming, up to now for active sessions.
func (s *SwimSession) WaterSeconds(now time.Time) int64 {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	d := end.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// Matches reports whether the session belongs to the given swimmer, team and lane.
func (s *SwimSession) Matches(swimmerID, teamID string, lane int) bool {
	return s.SwimmerID == swimmerID && s.TeamID == teamID && s.LaneNumber == lane
}

// CanStart checks the one-active-swimmer-per-team rule against current sessions.
// PRE: active holds the competition's active sessions
// POST: ErrTeamAlreadySwimming if teamID already has one
func CanStart(active []SwimSession, teamID string) error {
	for _, s := range active {
		if s.IsActive && s.TeamID == teamID {
			return ErrTeamAlreadySwimming
		}
	}
	return nil
}
