package swimmer

import (
	"context"

	domain "swimtrack/internal/domain/swimmer"
)

// Store persists Swimmer state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Swimmer, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Swimmer, error)
	Save(ctx context.Context, value domain.Swimmer) error
	Delete(ctx context.Context, id string) error
}

// ListFilter carries filtering parameters for List operations.
// Results are ordered by name.
type ListFilter struct {
	CompetitionID string
	TeamID        string
}
