package team

import (
	"context"

	domain "swimtrack/internal/domain/team"
)

// Store persists Team state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Team, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Team, error)
	Save(ctx context.Context, value domain.Team) error
	Delete(ctx context.Context, id string) error
}

// ListFilter carries filtering parameters for List operations.
// Results are ordered by lane, then name.
type ListFilter struct {
	CompetitionID string
	LaneNumber    int // 0 means any lane
}
