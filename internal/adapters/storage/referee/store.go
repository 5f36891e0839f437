package referee

import (
	"context"

	domain "swimtrack/internal/domain/referee"
)

// Store persists Referee state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Referee, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Referee, error)
	Save(ctx context.Context, value domain.Referee) error
	Delete(ctx context.Context, id string) error
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	CompetitionID string
	UserID        string
}
