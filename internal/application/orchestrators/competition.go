package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"swimtrack/internal/adapters/storage"
	compstore "swimtrack/internal/adapters/storage/competition"
	refstore "swimtrack/internal/adapters/storage/referee"
	sessionstore "swimtrack/internal/adapters/storage/swimsession"
	"swimtrack/internal/domain/account"
	"swimtrack/internal/domain/competition"
	"swimtrack/internal/domain/referee"
)

// CompetitionStore defines the store interface needed by competition orchestrators.
type CompetitionStore interface {
	GetByID(ctx context.Context, id string) (competition.Competition, error)
	Save(ctx context.Context, c competition.Competition) error
}

// CompetitionDeleter removes a competition and everything under it.
type CompetitionDeleter interface {
	GetByID(ctx context.Context, id string) (competition.Competition, error)
	Delete(ctx context.Context, id string) (compstore.DeleteCounts, error)
}

// AccountReader looks up accounts by ID.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// SessionCloser ends active swim sessions in bulk.
type SessionCloser interface {
	EndActive(ctx context.Context, filter sessionstore.ListFilter, now time.Time) (int, error)
}

// CreateCompetitionInput carries input for CreateCompetition.
type CreateCompetitionInput struct {
	Actor Actor
	ID    string // optional client-chosen ID
	Apply func(*competition.Competition)
}

// CreateCompetitionDeps holds dependencies for CreateCompetition.
type CreateCompetitionDeps struct {
	CompetitionStore CompetitionStore
	AccountStore     AccountReader
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteCreateCompetition creates an upcoming competition.
// PRE: input.Apply sets the requested fields
// POST: competition saved with status upcoming and defaults filled in
// INVARIANT: the organizer account exists and may manage competitions
func ExecuteCreateCompetition(ctx context.Context, input CreateCompetitionInput, deps CreateCompetitionDeps) (competition.Competition, error) {
	c := competition.Competition{DoubleCountTimeout: competition.DefaultDoubleCountTimeout}
	if input.Apply != nil {
		input.Apply(&c)
	}
	c.ID = input.ID
	if c.ID == "" {
		c.ID = deps.GenerateID()
	}
	if c.OrganizerID == "" && input.Actor.Role == account.RoleOrganizer {
		c.OrganizerID = input.Actor.AccountID
	}
	c.Status = competition.StatusUpcoming
	c.ActualStartTime = nil
	c.ActualEndTime = nil
	c.CreatedAt = deps.Now()
	c.ApplyDefaults()

	if err := c.Validate(); err != nil {
		return competition.Competition{}, invalid(err)
	}
	if err := authorize(input.Actor, c); err != nil {
		return competition.Competition{}, err
	}
	if err := checkOrganizer(ctx, deps.AccountStore, c.OrganizerID); err != nil {
		return competition.Competition{}, err
	}
	if err := deps.CompetitionStore.Save(ctx, c); err != nil {
		return competition.Competition{}, fmt.Errorf("save competition: %w", err)
	}

	slog.Info("competition_event", "event", "competition_created", "competition_id", c.ID, "organizer_id", c.OrganizerID)
	return c, nil
}

func checkOrganizer(ctx context.Context, accounts AccountReader, id string) error {
	org, err := accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Resource: "Organizer"}
		}
		return fmt.Errorf("load organizer: %w", err)
	}
	if !org.CanManageCompetitions() {
		return invalid(errors.New("organizerId must refer to an organizer account"))
	}
	return nil
}

// UpdateCompetitionInput carries input for UpdateCompetition.
type UpdateCompetitionInput struct {
	Actor  Actor
	ID     string
	Apply  func(*competition.Competition)
	Status *string
}

// UpdateCompetitionDeps holds dependencies for UpdateCompetition.
type UpdateCompetitionDeps struct {
	CompetitionStore CompetitionStore
	AccountStore     AccountReader
	SessionStore     SessionCloser
	// OnFinished runs once the competition has moved to completed or stopped.
	// Optional.
	OnFinished func(ctx context.Context, c competition.Competition)
	Now        func() time.Time
}

// ExecuteUpdateCompetition applies field changes and an optional status change.
// PRE: competition input.ID exists
// POST: competition saved; on finishing, every active session is closed
// INVARIANT: actual start and end times are stamped only once
func ExecuteUpdateCompetition(ctx context.Context, input UpdateCompetitionInput, deps UpdateCompetitionDeps) (competition.Competition, error) {
	c, err := deps.CompetitionStore.GetByID(ctx, input.ID)
	if err != nil {
		return competition.Competition{}, lookup("Competition", err)
	}
	if err := authorize(input.Actor, c); err != nil {
		return competition.Competition{}, err
	}

	wasFinished := c.IsFinished()
	prevOrganizer := c.OrganizerID
	now := deps.Now()

	if input.Apply != nil {
		input.Apply(&c)
	}
	c.ID = input.ID
	if input.Status != nil && *input.Status != c.Status {
		if err := c.ApplyStatus(*input.Status, now); err != nil {
			return competition.Competition{}, invalid(err)
		}
	}
	if err := c.Validate(); err != nil {
		return competition.Competition{}, invalid(err)
	}
	if c.OrganizerID != prevOrganizer {
		if !input.Actor.IsAdmin() && input.Actor != (Actor{}) {
			return competition.Competition{}, ErrForbidden
		}
		if err := checkOrganizer(ctx, deps.AccountStore, c.OrganizerID); err != nil {
			return competition.Competition{}, err
		}
	}
	if err := deps.CompetitionStore.Save(ctx, c); err != nil {
		return competition.Competition{}, fmt.Errorf("save competition: %w", err)
	}

	if !wasFinished && c.IsFinished() {
		closed, err := deps.SessionStore.EndActive(ctx, sessionstore.ListFilter{CompetitionID: c.ID}, now)
		if err != nil {
			return competition.Competition{}, fmt.Errorf("close sessions: %w", err)
		}
		slog.Info("competition_event", "event", "competition_finished", "competition_id", c.ID, "status", c.Status, "sessions_closed", closed)
		if deps.OnFinished != nil {
			deps.OnFinished(ctx, c)
		}
	} else {
		slog.Info("competition_event", "event", "competition_updated", "competition_id", c.ID, "status", c.Status)
	}
	return c, nil
}

// RefereeLister lists referees with a filter.
type RefereeLister interface {
	List(ctx context.Context, filter refstore.ListFilter) ([]referee.Referee, error)
}

// AccountDeleter removes login accounts.
type AccountDeleter interface {
	Delete(ctx context.Context, id string) error
}

// DeleteCompetitionInput carries input for DeleteCompetition.
type DeleteCompetitionInput struct {
	Actor Actor
	ID    string
}

// DeleteCompetitionDeps holds dependencies for DeleteCompetition.
type DeleteCompetitionDeps struct {
	CompetitionStore CompetitionDeleter
	RefereeStore     RefereeLister
	AccountStore     AccountDeleter
}

// ExecuteDeleteCompetition removes a competition with its teams, swimmers,
// referees, sessions and laps.
// PRE: competition input.ID exists
// POST: returns how many dependent rows went; referee logins are removed
func ExecuteDeleteCompetition(ctx context.Context, input DeleteCompetitionInput, deps DeleteCompetitionDeps) (compstore.DeleteCounts, error) {
	c, err := deps.CompetitionStore.GetByID(ctx, input.ID)
	if err != nil {
		return compstore.DeleteCounts{}, lookup("Competition", err)
	}
	if err := authorize(input.Actor, c); err != nil {
		return compstore.DeleteCounts{}, err
	}

	refs, err := deps.RefereeStore.List(ctx, refstore.ListFilter{CompetitionID: c.ID})
	if err != nil {
		return compstore.DeleteCounts{}, fmt.Errorf("list referees: %w", err)
	}
	counts, err := deps.CompetitionStore.Delete(ctx, c.ID)
	if err != nil {
		return compstore.DeleteCounts{}, lookup("Competition", err)
	}
	// Accounts live in the local store even when competitions are remote.
	for _, r := range refs {
		if err := deps.AccountStore.Delete(ctx, r.UserID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("competition_event", "event", "referee_account_delete_failed", "user_id", r.UserID, "error", err)
		}
	}

	slog.Info("competition_event", "event", "competition_deleted", "competition_id", c.ID,
		"teams", counts.Teams, "swimmers", counts.Swimmers, "referees", counts.Referees,
		"lap_counts", counts.LapCounts, "swim_sessions", counts.SwimSessions)
	return counts, nil
}
