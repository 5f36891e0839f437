package lapcount

import (
	"context"

	domain "swimtrack/internal/domain/lapcount"
)

// Store persists LapCount records. Laps are never updated.
type Store interface {
	List(ctx context.Context, filter ListFilter) ([]domain.LapCount, error)
	// LastBySwimmer returns the swimmer's most recent lap, or nil if none.
	LastBySwimmer(ctx context.Context, competitionID, swimmerID string) (*domain.LapCount, error)
	// Append stores a lap in one atomic step. It assigns LapNumber, bumps the
	// session's lap count, and rejects the lap with domain.ErrTooSoon when the
	// swimmer counted one within MinIntervalSeconds.
	Append(ctx context.Context, req AppendRequest) (domain.LapCount, error)
}

// ListFilter carries filtering parameters for List operations.
// Results are ordered by timestamp ascending.
type ListFilter struct {
	CompetitionID string
	TeamID        string
	SwimmerID     string
}

// AppendRequest is a lap to record against an active session.
type AppendRequest struct {
	Lap                domain.LapCount
	SessionID          string
	MinIntervalSeconds int
}
