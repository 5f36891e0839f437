package swimsession

import (
	"context"
	"time"

	domain "swimtrack/internal/domain/swimsession"
)

// Store persists SwimSession state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.SwimSession, error)
	List(ctx context.Context, filter ListFilter) ([]domain.SwimSession, error)
	// Start inserts an active session. It fails with domain.ErrTeamAlreadySwimming
	// when the team already has one, without a separate read.
	Start(ctx context.Context, value domain.SwimSession) error
	Save(ctx context.Context, value domain.SwimSession) error
	// EndActive closes every active session matching filter and returns how many.
	EndActive(ctx context.Context, filter ListFilter, now time.Time) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// Results are ordered by start time, newest first.
type ListFilter struct {
	CompetitionID string
	TeamID        string
	SwimmerID     string
	// IsActive selects active (true) or ended (false) sessions. Nil matches both.
	IsActive *bool
}

// Active returns a ListFilter.IsActive value.
func Active(v bool) *bool { return &v }
