package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sessionstore "swimtrack/internal/adapters/storage/swimsession"
	"swimtrack/internal/domain/swimmer"
	"swimtrack/internal/domain/team"
)

// TeamReader looks up teams by ID.
type TeamReader interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
}

// SwimmerStore defines the store interface needed by swimmer orchestrators.
type SwimmerStore interface {
	GetByID(ctx context.Context, id string) (swimmer.Swimmer, error)
	Save(ctx context.Context, s swimmer.Swimmer) error
	Delete(ctx context.Context, id string) error
}

// SaveSwimmerInput carries input for CreateSwimmer and UpdateSwimmer.
type SaveSwimmerInput struct {
	Actor Actor
	ID    string // optional on create
	Apply func(*swimmer.Swimmer)
}

// SwimmerDeps holds dependencies for the swimmer orchestrators.
type SwimmerDeps struct {
	CompetitionStore CompetitionReader
	TeamStore        TeamReader
	SwimmerStore     SwimmerStore
	SessionStore     SessionCloser
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteCreateSwimmer adds a swimmer to a team.
// PRE: input.Apply sets name, teamId and competitionId
// POST: swimmer saved
// INVARIANT: under-12 swimmers carry parent name and contact
func ExecuteCreateSwimmer(ctx context.Context, input SaveSwimmerInput, deps SwimmerDeps) (swimmer.Swimmer, error) {
	s := swimmer.Swimmer{}
	if input.Apply != nil {
		input.Apply(&s)
	}
	s.ID = input.ID
	if s.ID == "" {
		s.ID = deps.GenerateID()
	}
	s.CreatedAt = deps.Now()

	if err := saveSwimmer(ctx, input.Actor, &s, deps); err != nil {
		return swimmer.Swimmer{}, err
	}
	slog.Info("swimmer_event", "event", "swimmer_created", "swimmer_id", s.ID, "team_id", s.TeamID, "under_12", s.IsUnder12)
	return s, nil
}

// ExecuteUpdateSwimmer changes an existing swimmer.
// PRE: swimmer input.ID exists
// POST: swimmer saved
func ExecuteUpdateSwimmer(ctx context.Context, input SaveSwimmerInput, deps SwimmerDeps) (swimmer.Swimmer, error) {
	s, err := deps.SwimmerStore.GetByID(ctx, input.ID)
	if err != nil {
		return swimmer.Swimmer{}, lookup("Swimmer", err)
	}
	if input.Apply != nil {
		input.Apply(&s)
	}
	s.ID = input.ID

	if err := saveSwimmer(ctx, input.Actor, &s, deps); err != nil {
		return swimmer.Swimmer{}, err
	}
	slog.Info("swimmer_event", "event", "swimmer_updated", "swimmer_id", s.ID, "team_id", s.TeamID)
	return s, nil
}

func saveSwimmer(ctx context.Context, actor Actor, s *swimmer.Swimmer, deps SwimmerDeps) error {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return invalid(err)
	}
	comp, err := deps.CompetitionStore.GetByID(ctx, s.CompetitionID)
	if err != nil {
		return lookup("Competition", err)
	}
	if err := authorize(actor, comp); err != nil {
		return err
	}
	t, err := deps.TeamStore.GetByID(ctx, s.TeamID)
	if err != nil {
		return lookup("Team", err)
	}
	if t.CompetitionID != s.CompetitionID {
		return invalid(swimmer.ErrTeamMismatch)
	}
	if err := deps.SwimmerStore.Save(ctx, *s); err != nil {
		return fmt.Errorf("save swimmer: %w", err)
	}
	return nil
}

// DeleteSwimmerInput carries input for DeleteSwimmer.
type DeleteSwimmerInput struct {
	Actor Actor
	ID    string
}

// ExecuteDeleteSwimmer removes a swimmer with their sessions and laps.
// PRE: swimmer input.ID exists
// POST: the swimmer's active session is closed before removal
func ExecuteDeleteSwimmer(ctx context.Context, input DeleteSwimmerInput, deps SwimmerDeps) error {
	s, err := deps.SwimmerStore.GetByID(ctx, input.ID)
	if err != nil {
		return lookup("Swimmer", err)
	}
	comp, err := deps.CompetitionStore.GetByID(ctx, s.CompetitionID)
	if err != nil {
		return lookup("Competition", err)
	}
	if err := authorize(input.Actor, comp); err != nil {
		return err
	}

	closed, err := deps.SessionStore.EndActive(ctx, sessionstore.ListFilter{CompetitionID: s.CompetitionID, SwimmerID: s.ID}, deps.Now())
	if err != nil {
		return fmt.Errorf("close sessions: %w", err)
	}
	if err := deps.SwimmerStore.Delete(ctx, s.ID); err != nil {
		return lookup("Swimmer", err)
	}
	slog.Info("swimmer_event", "event", "swimmer_deleted", "swimmer_id", s.ID, "sessions_closed", closed)
	return nil
}
