package orchestrators

import (
	"context"
	"errors"
	"testing"

	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/domain/competition"
	"swimtrack/internal/domain/team"
)

func teamDeps(f fixture) TeamDeps {
	return TeamDeps{
		CompetitionStore: f.db.Competitions(),
		TeamStore:        f.db.Teams(),
		SessionStore:     f.db.SwimSessions(),
		GenerateID:       f.ids,
		Now:              fixedNow,
	}
}

func teamOn(name, color string, lane int) func(*team.Team) {
	return func(t *team.Team) {
		t.Name = name
		t.Color = color
		t.CompetitionID = "comp-1"
		t.AssignedLane = lane
	}
}

// --- ExecuteCreateTeam tests ---

func TestExecuteCreateTeam_ColorLaneUnique(t *testing.T) {
	tests := []struct {
		name    string
		apply   func(*team.Team)
		wantErr error
	}{
		{"same color other lane", teamOn("Rays", "red", 3), nil},
		{"other color same lane", teamOn("Rays", "green", 1), nil},
		{"same color same lane", teamOn("Rays", "red", 1), team.ErrColorLaneTaken},
		{"color match ignores case", teamOn("Rays", "RED", 1), team.ErrColorLaneTaken},
		{"lane outside pool", teamOn("Rays", "gold", 5), competition.ErrLaneOutOfRange},
		{"missing color", teamOn("Rays", "", 3), team.ErrEmptyColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := ExecuteCreateTeam(context.Background(), SaveTeamInput{Actor: organizer, Apply: tt.apply}, teamDeps(f))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			var ve *ValidationError
			if tt.wantErr != nil && !errors.As(err, &ve) {
				t.Errorf("err %T is not a ValidationError", err)
			}
		})
	}
}

func TestExecuteCreateTeam_Forbidden(t *testing.T) {
	f := newFixture(t)
	_, err := ExecuteCreateTeam(context.Background(), SaveTeamInput{Actor: stranger, Apply: teamOn("Rays", "gold", 3)}, teamDeps(f))
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

// --- ExecuteUpdateTeam tests ---

func TestExecuteUpdateTeam_KeepingOwnColorIsNotAConflict(t *testing.T) {
	f := newFixture(t)
	got, err := ExecuteUpdateTeam(context.Background(), SaveTeamInput{
		Actor: organizer,
		ID:    "team-1",
		Apply: func(t *team.Team) { t.Name = "Great Sharks" },
	}, teamDeps(f))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Great Sharks" || got.Color != "red" || got.AssignedLane != 1 {
		t.Errorf("team = %+v", got)
	}
}

func TestExecuteUpdateTeam_MovingOntoTakenSlot(t *testing.T) {
	f := newFixture(t)
	_, err := ExecuteUpdateTeam(context.Background(), SaveTeamInput{
		Actor: organizer,
		ID:    "team-2",
		Apply: func(t *team.Team) { t.Color = "red"; t.AssignedLane = 1 },
	}, teamDeps(f))
	if !errors.Is(err, team.ErrColorLaneTaken) {
		t.Errorf("err = %v, want ErrColorLaneTaken", err)
	}
}

// --- ExecuteDeleteTeam tests ---

func TestExecuteDeleteTeam_RemovesSwimmersAndSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	register(t, f, "sw-1", "team-1", 1, fixedNow)

	if err := ExecuteDeleteTeam(ctx, DeleteTeamInput{Actor: organizer, ID: "team-1"}, teamDeps(f)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.db.Teams().GetByID(ctx, "team-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("team still present: %v", err)
	}
	if active, _ := f.db.SwimSessions().List(ctx, sessionFilterActive("team-1")); len(active) != 0 {
		t.Errorf("%d sessions still active", len(active))
	}
	if _, err := f.db.Swimmers().GetByID(ctx, "sw-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("swimmer still present: %v", err)
	}
}
