package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"swimtrack/internal/adapters/http/middleware"
	"swimtrack/internal/adapters/storage"
	lapStore "swimtrack/internal/adapters/storage/lapcount"
	refereeStore "swimtrack/internal/adapters/storage/referee"
	sessionStore "swimtrack/internal/adapters/storage/swimsession"
	"swimtrack/internal/adapters/wire"
	"swimtrack/internal/application/listutil"
	"swimtrack/internal/application/orchestrators"
	"swimtrack/internal/domain/account"
)

// authorizeCounting checks that the caller may register swimmers and count
// laps in a competition. For a referee it returns their referee ID.
// PRE: the request passed RequireRole
// POST: admins pass; organizers pass for their own competitions; referees
// pass for competitions they are assigned to
func (a *app) authorizeCounting(ctx context.Context, competitionID string) (string, error) {
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		return "", orchestrators.ErrForbidden
	}
	switch sess.Role {
	case account.RoleAdmin:
		return "", nil
	case account.RoleOrganizer:
		comp, err := a.stores.CompetitionStore.GetByID(ctx, competitionID)
		if errors.Is(err, storage.ErrNotFound) {
			return "", &orchestrators.NotFoundError{Resource: "Competition"}
		}
		if err != nil {
			return "", fmt.Errorf("load competition: %w", err)
		}
		if comp.OrganizerID != sess.AccountID {
			return "", orchestrators.ErrForbidden
		}
		return "", nil
	case account.RoleReferee:
		refs, err := a.stores.RefereeStore.List(ctx, refereeStore.ListFilter{CompetitionID: competitionID, UserID: sess.AccountID})
		if err != nil {
			return "", fmt.Errorf("list referees: %w", err)
		}
		if len(refs) == 0 {
			return "", orchestrators.ErrForbidden
		}
		return refs[0].ID, nil
	}
	return "", orchestrators.ErrForbidden
}

var errInvalidActive = errors.New("isActive must be true, false, 1 or 0")

// parseActiveFilter reads the isActive query value. Empty means no filter.
func parseActiveFilter(v string) (*bool, error) {
	switch v {
	case "":
		return nil, nil
	case "true", "1":
		return sessionStore.Active(true), nil
	case "false", "0":
		return sessionStore.Active(false), nil
	}
	return nil, errInvalidActive
}

// handleListSessions handles GET /swim-sessions?competitionId=&teamId=&swimmerId=&isActive=&limit=&offset=
func (a *app) handleListSessions(w http.ResponseWriter, r *http.Request) {
	win, ok := parseWindow(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	active, err := parseActiveFilter(q.Get("isActive"))
	if err != nil {
		middleware.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	sessions, err := a.stores.SwimSessionStore.List(r.Context(), sessionStore.ListFilter{
		CompetitionID: q.Get("competitionId"),
		TeamID:        q.Get("teamId"),
		SwimmerID:     q.Get("swimmerId"),
		IsActive:      active,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	sessions = listutil.Slice(sessions, win)
	out := make([]wire.SwimSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, wire.FromSwimSession(s))
	}
	writeData(w, http.StatusOK, out)
}

// handleGetSession handles GET /swim-sessions/{id}
func (a *app) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.stores.SwimSessionStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		notFoundOr(w, "Swim session", err)
		return
	}
	writeData(w, http.StatusOK, wire.FromSwimSession(s))
}

// handleStartSession handles POST /swim-sessions: a swimmer enters the water.
func (a *app) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var input wire.StartSession
	if err := decodeBody(r, &input); err != nil {
		badJSON(w)
		return
	}
	if input.CompetitionID != "" {
		if _, err := a.authorizeCounting(r.Context(), input.CompetitionID); err != nil {
			writeError(w, err)
			return
		}
	}
	sess, err := orchestrators.ExecuteRegisterSwimmer(r.Context(), orchestrators.RegisterSwimmerInput{
		ID:            input.ID,
		CompetitionID: input.CompetitionID,
		SwimmerID:     input.SwimmerID,
		TeamID:        input.TeamID,
		LaneNumber:    input.LaneNumber,
	}, orchestrators.RegisterSwimmerDeps{
		CompetitionStore: a.stores.CompetitionStore,
		TeamStore:        a.stores.TeamStore,
		SwimmerStore:     a.stores.SwimmerStore,
		SessionStore:     a.stores.SwimSessionStore,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, wire.FromSwimSession(sess))
}

// handleUpdateSession handles PUT /swim-sessions/{id}. Setting isActive to
// false takes the swimmer out of the water; other bodies return the session
// unchanged.
func (a *app) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var input wire.UpdateSession
	if err := decodeBody(r, &input); err != nil {
		badJSON(w)
		return
	}
	current, err := a.stores.SwimSessionStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		notFoundOr(w, "Swim session", err)
		return
	}
	if _, err := a.authorizeCounting(r.Context(), current.CompetitionID); err != nil {
		writeError(w, err)
		return
	}
	if input.IsActive == nil || *input.IsActive {
		writeData(w, http.StatusOK, wire.FromSwimSession(current))
		return
	}

	ended, err := orchestrators.ExecuteEndSession(r.Context(), orchestrators.EndSessionInput{ID: current.ID},
		orchestrators.EndSessionDeps{SessionStore: a.stores.SwimSessionStore, Now: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, wire.FromSwimSession(ended))
}

// handleListLaps handles GET /lap-counts?competitionId=&teamId=&swimmerId=&limit=&offset=
func (a *app) handleListLaps(w http.ResponseWriter, r *http.Request) {
	win, ok := parseWindow(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	laps, err := a.stores.LapCountStore.List(r.Context(), lapStore.ListFilter{
		CompetitionID: q.Get("competitionId"),
		TeamID:        q.Get("teamId"),
		SwimmerID:     q.Get("swimmerId"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	laps = listutil.Slice(laps, win)
	out := make([]wire.LapCount, 0, len(laps))
	for _, l := range laps {
		out = append(out, wire.FromLapCount(l))
	}
	writeData(w, http.StatusOK, out)
}

// handleCountLap handles POST /lap-counts. A referee's own ID is recorded
// on the lap when the body names none.
func (a *app) handleCountLap(w http.ResponseWriter, r *http.Request) {
	var input wire.CountLap
	if err := decodeBody(r, &input); err != nil {
		badJSON(w)
		return
	}
	if input.CompetitionID != "" {
		refereeID, err := a.authorizeCounting(r.Context(), input.CompetitionID)
		if err != nil {
			writeError(w, err)
			return
		}
		if refereeID != "" {
			input.RefereeID = refereeID
		}
	}
	lap, err := orchestrators.ExecuteCountLap(r.Context(), orchestrators.CountLapInput{
		ID:            input.ID,
		CompetitionID: input.CompetitionID,
		LaneNumber:    input.LaneNumber,
		TeamID:        input.TeamID,
		SwimmerID:     input.SwimmerID,
		RefereeID:     input.RefereeID,
	}, orchestrators.CountLapDeps{
		CompetitionStore: a.stores.CompetitionStore,
		SessionStore:     a.stores.SwimSessionStore,
		LapStore:         a.stores.LapCountStore,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, wire.FromLapCount(lap))
}
