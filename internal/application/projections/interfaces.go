package projections

import (
	"context"

	lapStore "swimtrack/internal/adapters/storage/lapcount"
	sessionStore "swimtrack/internal/adapters/storage/swimsession"
	swimmerStore "swimtrack/internal/adapters/storage/swimmer"
	teamStore "swimtrack/internal/adapters/storage/team"
	domainCompetition "swimtrack/internal/domain/competition"
	domainLap "swimtrack/internal/domain/lapcount"
	domainSession "swimtrack/internal/domain/swimsession"
	domainSwimmer "swimtrack/internal/domain/swimmer"
	domainTeam "swimtrack/internal/domain/team"
)

// CompetitionStore interface for competition queries.
type CompetitionStore interface {
	GetByID(ctx context.Context, id string) (domainCompetition.Competition, error)
}

// TeamStore interface for team queries.
type TeamStore interface {
	List(ctx context.Context, filter teamStore.ListFilter) ([]domainTeam.Team, error)
}

// SwimmerStore interface for swimmer queries.
type SwimmerStore interface {
	List(ctx context.Context, filter swimmerStore.ListFilter) ([]domainSwimmer.Swimmer, error)
}

// SwimSessionStore interface for swim session queries.
type SwimSessionStore interface {
	List(ctx context.Context, filter sessionStore.ListFilter) ([]domainSession.SwimSession, error)
}

// LapCountStore interface for lap queries.
type LapCountStore interface {
	List(ctx context.Context, filter lapStore.ListFilter) ([]domainLap.LapCount, error)
}
