package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lapstore "swimtrack/internal/adapters/storage/lapcount"
	sessionstore "swimtrack/internal/adapters/storage/swimsession"
	"swimtrack/internal/domain/competition"
	"swimtrack/internal/domain/lapcount"
	"swimtrack/internal/domain/swimmer"
	"swimtrack/internal/domain/swimsession"
)

// SwimmerReader looks up swimmers by ID.
type SwimmerReader interface {
	GetByID(ctx context.Context, id string) (swimmer.Swimmer, error)
}

// SessionStore defines the store interface needed by session orchestrators.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (swimsession.SwimSession, error)
	List(ctx context.Context, filter sessionstore.ListFilter) ([]swimsession.SwimSession, error)
	Start(ctx context.Context, s swimsession.SwimSession) error
	Save(ctx context.Context, s swimsession.SwimSession) error
}

// LapStore defines the store interface needed by CountLap.
type LapStore interface {
	LastBySwimmer(ctx context.Context, competitionID, swimmerID string) (*lapcount.LapCount, error)
	Append(ctx context.Context, req lapstore.AppendRequest) (lapcount.LapCount, error)
}

// RegisterSwimmerInput carries input for RegisterSwimmer.
type RegisterSwimmerInput struct {
	ID            string // optional
	CompetitionID string
	SwimmerID     string
	TeamID        string
	LaneNumber    int
}

// RegisterSwimmerDeps holds dependencies for RegisterSwimmer.
type RegisterSwimmerDeps struct {
	CompetitionStore CompetitionReader
	TeamStore        TeamReader
	SwimmerStore     SwimmerReader
	SessionStore     SessionStore
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteRegisterSwimmer puts a swimmer in the water for their team.
// Registration does not depend on competition status.
// PRE: swimmer belongs to the team; team belongs to the competition
// POST: an active session with no laps exists for the swimmer
// INVARIANT: at most one active session per team
func ExecuteRegisterSwimmer(ctx context.Context, input RegisterSwimmerInput, deps RegisterSwimmerDeps) (swimsession.SwimSession, error) {
	if input.CompetitionID == "" || input.SwimmerID == "" || input.TeamID == "" || input.LaneNumber < 1 {
		return swimsession.SwimSession{}, invalid(swimsession.ErrMissingFields)
	}
	comp, err := deps.CompetitionStore.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return swimsession.SwimSession{}, lookup("Competition", err)
	}
	if !comp.HasLane(input.LaneNumber) {
		return swimsession.SwimSession{}, invalid(competition.ErrLaneOutOfRange)
	}
	t, err := deps.TeamStore.GetByID(ctx, input.TeamID)
	if err != nil {
		return swimsession.SwimSession{}, lookup("Team", err)
	}
	if t.CompetitionID != comp.ID {
		return swimsession.SwimSession{}, invalid(swimmer.ErrTeamMismatch)
	}
	sw, err := deps.SwimmerStore.GetByID(ctx, input.SwimmerID)
	if err != nil {
		return swimsession.SwimSession{}, lookup("Swimmer", err)
	}
	if sw.TeamID != t.ID {
		return swimsession.SwimSession{}, invalid(swimsession.ErrSwimmerNotInTeam)
	}

	id := input.ID
	if id == "" {
		id = deps.GenerateID()
	}
	sess, err := swimsession.New(id, comp.ID, sw.ID, t.ID, input.LaneNumber, deps.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return swimsession.SwimSession{}, invalid(err)
	}
	if err := deps.SessionStore.Start(ctx, sess); err != nil {
		if errors.Is(err, swimsession.ErrTeamAlreadySwimming) {
			slog.Info("session_event", "event", "register_rejected", "team_id", t.ID, "swimmer_id", sw.ID, "reason", "team_already_swimming")
			return swimsession.SwimSession{}, swimsession.ErrTeamAlreadySwimming
		}
		return swimsession.SwimSession{}, fmt.Errorf("start session: %w", err)
	}

	slog.Info("session_event", "event", "swimmer_registered", "session_id", sess.ID, "team_id", t.ID, "swimmer_id", sw.ID, "lane", sess.LaneNumber)
	return sess, nil
}

// EndSessionInput carries input for EndSession.
type EndSessionInput struct {
	ID string
}

// EndSessionDeps holds dependencies for EndSession.
type EndSessionDeps struct {
	SessionStore SessionStore
	Now          func() time.Time
}

// ExecuteEndSession takes a swimmer out of the water.
// PRE: session input.ID exists
// POST: session inactive with EndTime set; its laps are kept
func ExecuteEndSession(ctx context.Context, input EndSessionInput, deps EndSessionDeps) (swimsession.SwimSession, error) {
	sess, err := deps.SessionStore.GetByID(ctx, input.ID)
	if err != nil {
		return swimsession.SwimSession{}, lookup("Swim session", err)
	}
	if err := sess.End(deps.Now().UTC().Truncate(time.Millisecond)); err != nil {
		return swimsession.SwimSession{}, err
	}
	if err := deps.SessionStore.Save(ctx, sess); err != nil {
		return swimsession.SwimSession{}, fmt.Errorf("save session: %w", err)
	}
	slog.Info("session_event", "event", "session_ended", "session_id", sess.ID, "team_id", sess.TeamID, "laps", sess.LapCount)
	return sess, nil
}

// CountLapInput carries input for CountLap.
type CountLapInput struct {
	ID            string // optional
	CompetitionID string
	LaneNumber    int
	TeamID        string
	SwimmerID     string
	RefereeID     string // optional
}

// CountLapDeps holds dependencies for CountLap.
type CountLapDeps struct {
	CompetitionStore CompetitionReader
	SessionStore     SessionStore
	LapStore         LapStore
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteCountLap records one lap for the swimmer in the water.
// Checks run in order: required fields, competition status, active session,
// double-count guard. The store repeats the guard atomically on append.
// PRE: competition is active and the swimmer has an active session on the lane
// POST: lap appended with the team's next lap number; session lap count bumped
// INVARIANT: two laps for one swimmer are at least the competition's timeout apart
func ExecuteCountLap(ctx context.Context, input CountLapInput, deps CountLapDeps) (lapcount.LapCount, error) {
	lap := lapcount.LapCount{
		ID:            input.ID,
		CompetitionID: input.CompetitionID,
		LaneNumber:    input.LaneNumber,
		TeamID:        input.TeamID,
		SwimmerID:     input.SwimmerID,
		RefereeID:     input.RefereeID,
	}
	if err := lap.Validate(); err != nil {
		return lapcount.LapCount{}, invalid(err)
	}

	comp, err := deps.CompetitionStore.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return lapcount.LapCount{}, lookup("Competition", err)
	}
	if err := comp.CountingAllowed(); err != nil {
		slog.Info("lap_event", "event", "lap_rejected", "competition_id", comp.ID, "swimmer_id", input.SwimmerID, "reason", comp.Status)
		return lapcount.LapCount{}, err
	}

	active, err := deps.SessionStore.List(ctx, sessionstore.ListFilter{
		CompetitionID: comp.ID,
		SwimmerID:     input.SwimmerID,
		IsActive:      sessionstore.Active(true),
	})
	if err != nil {
		return lapcount.LapCount{}, fmt.Errorf("list sessions: %w", err)
	}
	var sess *swimsession.SwimSession
	for i := range active {
		if active[i].IsActive && active[i].Matches(input.SwimmerID, input.TeamID, input.LaneNumber) {
			sess = &active[i]
			break
		}
	}
	if sess == nil {
		slog.Info("lap_event", "event", "lap_rejected", "competition_id", comp.ID, "swimmer_id", input.SwimmerID, "reason", "no_active_session")
		return lapcount.LapCount{}, swimsession.ErrNoActiveSession
	}

	now := deps.Now().UTC().Truncate(time.Millisecond)
	last, err := deps.LapStore.LastBySwimmer(ctx, comp.ID, input.SwimmerID)
	if err != nil {
		return lapcount.LapCount{}, fmt.Errorf("load last lap: %w", err)
	}
	if !lapcount.CanCountLap(last, now, comp.DoubleCountTimeout) {
		return lapcount.LapCount{}, tooSoon(comp.ID, input.SwimmerID, lapcount.RetryAfter(last, now, comp.DoubleCountTimeout))
	}

	if lap.ID == "" {
		lap.ID = deps.GenerateID()
	}
	lap.Timestamp = now
	stored, err := deps.LapStore.Append(ctx, lapstore.AppendRequest{
		Lap:                lap,
		SessionID:          sess.ID,
		MinIntervalSeconds: comp.DoubleCountTimeout,
	})
	switch {
	case errors.Is(err, lapcount.ErrTooSoon):
		// Another referee won the race for this swimmer.
		retry := 1
		if latest, lerr := deps.LapStore.LastBySwimmer(ctx, comp.ID, input.SwimmerID); lerr == nil {
			retry = max(lapcount.RetryAfter(latest, now, comp.DoubleCountTimeout), 1)
		}
		return lapcount.LapCount{}, tooSoon(comp.ID, input.SwimmerID, retry)
	case errors.Is(err, swimsession.ErrNoActiveSession):
		return lapcount.LapCount{}, swimsession.ErrNoActiveSession
	case err != nil:
		return lapcount.LapCount{}, fmt.Errorf("append lap: %w", err)
	}

	slog.Info("lap_event", "event", "lap_counted", "competition_id", comp.ID, "team_id", stored.TeamID,
		"swimmer_id", stored.SwimmerID, "lap_number", stored.LapNumber)
	return stored, nil
}

func tooSoon(competitionID, swimmerID string, retryAfter int) error {
	slog.Info("lap_event", "event", "lap_rejected", "competition_id", competitionID, "swimmer_id", swimmerID, "reason", "too_soon", "retry_after", retryAfter)
	return &TooSoonError{RetryAfter: retryAfter}
}
