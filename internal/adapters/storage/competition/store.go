package competition

import (
	"context"

	domain "swimtrack/internal/domain/competition"
)

// Store persists Competition state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Competition, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Competition, error)
	Save(ctx context.Context, value domain.Competition) error
	Delete(ctx context.Context, id string) (DeleteCounts, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	OrganizerID string
	Status      string
}

// DeleteCounts reports how many dependent rows a cascade delete removed.
type DeleteCounts struct {
	Teams        int `json:"teams"`
	Swimmers     int `json:"swimmers"`
	Referees     int `json:"referees"`
	LapCounts    int `json:"lapCounts"`
	SwimSessions int `json:"swimSessions"`
}
