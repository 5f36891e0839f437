package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sessionstore "swimtrack/internal/adapters/storage/swimsession"
	teamstore "swimtrack/internal/adapters/storage/team"
	"swimtrack/internal/domain/competition"
	"swimtrack/internal/domain/team"
)

// CompetitionReader looks up competitions by ID.
type CompetitionReader interface {
	GetByID(ctx context.Context, id string) (competition.Competition, error)
}

// TeamStore defines the store interface needed by team orchestrators.
type TeamStore interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
	List(ctx context.Context, filter teamstore.ListFilter) ([]team.Team, error)
	Save(ctx context.Context, t team.Team) error
	Delete(ctx context.Context, id string) error
}

// SaveTeamInput carries input for CreateTeam and UpdateTeam.
type SaveTeamInput struct {
	Actor Actor
	ID    string // optional on create
	Apply func(*team.Team)
}

// TeamDeps holds dependencies for the team orchestrators.
type TeamDeps struct {
	CompetitionStore CompetitionReader
	TeamStore        TeamStore
	SessionStore     SessionCloser
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteCreateTeam adds a team to a competition lane.
// PRE: input.Apply sets name, color, competitionId and assignedLane
// POST: team saved
// INVARIANT: no other team of the competition has the same color on the lane
func ExecuteCreateTeam(ctx context.Context, input SaveTeamInput, deps TeamDeps) (team.Team, error) {
	t := team.Team{}
	if input.Apply != nil {
		input.Apply(&t)
	}
	t.ID = input.ID
	if t.ID == "" {
		t.ID = deps.GenerateID()
	}
	t.CreatedAt = deps.Now()

	if err := saveTeam(ctx, input.Actor, t, deps); err != nil {
		return team.Team{}, err
	}
	slog.Info("team_event", "event", "team_created", "team_id", t.ID, "competition_id", t.CompetitionID, "lane", t.AssignedLane)
	return t, nil
}

// ExecuteUpdateTeam changes an existing team.
// PRE: team input.ID exists
// POST: team saved; a team never conflicts with itself
func ExecuteUpdateTeam(ctx context.Context, input SaveTeamInput, deps TeamDeps) (team.Team, error) {
	t, err := deps.TeamStore.GetByID(ctx, input.ID)
	if err != nil {
		return team.Team{}, lookup("Team", err)
	}
	prevComp := t.CompetitionID
	if input.Apply != nil {
		input.Apply(&t)
	}
	t.ID = input.ID
	if t.CompetitionID != prevComp {
		return team.Team{}, invalid(errors.New("a team cannot move to another competition"))
	}

	if err := saveTeam(ctx, input.Actor, t, deps); err != nil {
		return team.Team{}, err
	}
	slog.Info("team_event", "event", "team_updated", "team_id", t.ID, "competition_id", t.CompetitionID, "lane", t.AssignedLane)
	return t, nil
}

func saveTeam(ctx context.Context, actor Actor, t team.Team, deps TeamDeps) error {
	if err := t.Validate(); err != nil {
		return invalid(err)
	}
	comp, err := deps.CompetitionStore.GetByID(ctx, t.CompetitionID)
	if err != nil {
		return lookup("Competition", err)
	}
	if err := authorize(actor, comp); err != nil {
		return err
	}
	if !comp.HasLane(t.AssignedLane) {
		return invalid(competition.ErrLaneOutOfRange)
	}

	existing, err := deps.TeamStore.List(ctx, teamstore.ListFilter{CompetitionID: t.CompetitionID, LaneNumber: t.AssignedLane})
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	if _, clash := t.FindConflict(existing); clash {
		return invalid(team.ErrColorLaneTaken)
	}

	if err := deps.TeamStore.Save(ctx, t); err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	return nil
}

// DeleteTeamInput carries input for DeleteTeam.
type DeleteTeamInput struct {
	Actor Actor
	ID    string
}

// ExecuteDeleteTeam removes a team with its swimmers, sessions and laps.
// PRE: team input.ID exists
// POST: the team's active session is closed before the team is removed
func ExecuteDeleteTeam(ctx context.Context, input DeleteTeamInput, deps TeamDeps) error {
	t, err := deps.TeamStore.GetByID(ctx, input.ID)
	if err != nil {
		return lookup("Team", err)
	}
	comp, err := deps.CompetitionStore.GetByID(ctx, t.CompetitionID)
	if err != nil {
		return lookup("Competition", err)
	}
	if err := authorize(input.Actor, comp); err != nil {
		return err
	}

	closed, err := deps.SessionStore.EndActive(ctx, sessionstore.ListFilter{CompetitionID: t.CompetitionID, TeamID: t.ID}, deps.Now())
	if err != nil {
		return fmt.Errorf("close sessions: %w", err)
	}
	if err := deps.TeamStore.Delete(ctx, t.ID); err != nil {
		return lookup("Team", err)
	}
	slog.Info("team_event", "event", "team_deleted", "team_id", t.ID, "competition_id", t.CompetitionID, "sessions_closed", closed)
	return nil
}
