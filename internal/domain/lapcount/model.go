package lapcount

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrTooSoon       = errors.New("lap counted too soon after the previous lap for this swimmer")
	ErrMissingFields = errors.New("competitionId, laneNumber, teamId and swimmerId are required")
)

// LapCount is one completed lap. Laps are append-only.
// INVARIANT: LapNumber is the team's 1-based lap count at insertion time.
type LapCount struct {
	ID            string
	CompetitionID string
	LaneNumber    int
	TeamID        string
	SwimmerID     string
	RefereeID     string // empty once the referee is deleted
	Timestamp     time.Time
	LapNumber     int
}

// Validate checks the fields a referee must supply.
func (l *LapCount) Validate() error {
	if l.CompetitionID == "" || l.TeamID == "" || l.SwimmerID == "" || l.LaneNumber < 1 {
		return ErrMissingFields
	}
	return nil
}

// CanCountLap reports whether a new lap at now may follow last.
// PRE: last is the swimmer's most recent lap, or nil if none
// POST: true iff last is nil or now-last >= minIntervalSeconds
func CanCountLap(last *LapCount, now time.Time, minIntervalSeconds int) bool {
	if last == nil {
		return true
	}
	return now.Sub(last.Timestamp) >= time.Duration(minIntervalSeconds)*time.Second
}

// RetryAfter returns the whole seconds to wait before the next lap counts.
// Returns 0 when a lap would be accepted now.
func RetryAfter(last *LapCount, now time.Time, minIntervalSeconds int) int {
	if CanCountLap(last, now, minIntervalSeconds) {
		return 0
	}
	elapsed := now.Sub(last.Timestamp)
	remaining := time.Duration(minIntervalSeconds)*time.Second - elapsed
	secs := int(remaining / time.Second)
	if remaining%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Threshold returns the instant before which a previous lap no longer blocks now.
// A lap strictly after the threshold blocks.
func Threshold(now time.Time, minIntervalSeconds int) time.Time {
	return now.Add(-time.Duration(minIntervalSeconds) * time.Second)
}

// LatestOf returns the lap with the greatest timestamp, or nil.
func LatestOf(laps []LapCount) *LapCount {
	var latest *LapCount
	for i := range laps {
		if latest == nil || laps[i].Timestamp.After(latest.Timestamp) {
			latest = &laps[i]
		}
	}
	return latest
}
