package web

import (
	"net/http"

	swimmerStore "swimtrack/internal/adapters/storage/swimmer"
	teamStore "swimtrack/internal/adapters/storage/team"
	"swimtrack/internal/adapters/wire"
	"swimtrack/internal/application/orchestrators"
)

func (a *app) teamDeps() orchestrators.TeamDeps {
	return orchestrators.TeamDeps{
		CompetitionStore: a.stores.CompetitionStore,
		TeamStore:        a.stores.TeamStore,
		SessionStore:     a.stores.SwimSessionStore,
		GenerateID:       generateID,
		Now:              timeNow,
	}
}

func (a *app) swimmerDeps() orchestrators.SwimmerDeps {
	return orchestrators.SwimmerDeps{
		CompetitionStore: a.stores.CompetitionStore,
		TeamStore:        a.stores.TeamStore,
		SwimmerStore:     a.stores.SwimmerStore,
		SessionStore:     a.stores.SwimSessionStore,
		GenerateID:       generateID,
		Now:              timeNow,
	}
}

// handleListTeams handles GET /teams?competitionId=&laneNumber=
func (a *app) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := a.stores.TeamStore.List(r.Context(), teamStore.ListFilter{
		CompetitionID: r.URL.Query().Get("competitionId"),
		LaneNumber:    queryInt(r, "laneNumber"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]wire.Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, wire.FromTeam(t))
	}
	writeData(w, http.StatusOK, out)
}

// handleGetTeam handles GET /teams/{id}
func (a *app) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	t, err := a.stores.TeamStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		notFoundOr(w, "Team", err)
		return
	}
	writeData(w, http.StatusOK, wire.FromTeam(t))
}

// handleCreateTeam handles POST /teams
func (a *app) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var patch wire.TeamPatch
	if err := decodeBody(r, &patch); err != nil {
		badJSON(w)
		return
	}
	t, err := orchestrators.ExecuteCreateTeam(r.Context(), orchestrators.SaveTeamInput{
		Actor: actor(r),
		ID:    patch.ID,
		Apply: patch.Apply,
	}, a.teamDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, wire.FromTeam(t))
}

// handleUpdateTeam handles PUT /teams/{id}
func (a *app) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var patch wire.TeamPatch
	if err := decodeBody(r, &patch); err != nil {
		badJSON(w)
		return
	}
	t, err := orchestrators.ExecuteUpdateTeam(r.Context(), orchestrators.SaveTeamInput{
		Actor: actor(r),
		ID:    r.PathValue("id"),
		Apply: patch.Apply,
	}, a.teamDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, wire.FromTeam(t))
}

// handleDeleteTeam handles DELETE /teams/{id}
func (a *app) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteTeam(r.Context(), orchestrators.DeleteTeamInput{
		Actor: actor(r),
		ID:    r.PathValue("id"),
	}, a.teamDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListSwimmers handles GET /swimmers?competitionId=&teamId=
func (a *app) handleListSwimmers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	swimmers, err := a.stores.SwimmerStore.List(r.Context(), swimmerStore.ListFilter{
		CompetitionID: q.Get("competitionId"),
		TeamID:        q.Get("teamId"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]wire.Swimmer, 0, len(swimmers))
	for _, s := range swimmers {
		out = append(out, wire.FromSwimmer(s))
	}
	writeData(w, http.StatusOK, out)
}

// handleGetSwimmer handles GET /swimmers/{id}
func (a *app) handleGetSwimmer(w http.ResponseWriter, r *http.Request) {
	s, err := a.stores.SwimmerStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		notFoundOr(w, "Swimmer", err)
		return
	}
	writeData(w, http.StatusOK, wire.FromSwimmer(s))
}

// handleCreateSwimmer handles POST /swimmers
func (a *app) handleCreateSwimmer(w http.ResponseWriter, r *http.Request) {
	var patch wire.SwimmerPatch
	if err := decodeBody(r, &patch); err != nil {
		badJSON(w)
		return
	}
	s, err := orchestrators.ExecuteCreateSwimmer(r.Context(), orchestrators.SaveSwimmerInput{
		Actor: actor(r),
		ID:    patch.ID,
		Apply: patch.Apply,
	}, a.swimmerDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, wire.FromSwimmer(s))
}

// handleUpdateSwimmer handles PUT /swimmers/{id}
func (a *app) handleUpdateSwimmer(w http.ResponseWriter, r *http.Request) {
	var patch wire.SwimmerPatch
	if err := decodeBody(r, &patch); err != nil {
		badJSON(w)
		return
	}
	s, err := orchestrators.ExecuteUpdateSwimmer(r.Context(), orchestrators.SaveSwimmerInput{
		Actor: actor(r),
		ID:    r.PathValue("id"),
		Apply: patch.Apply,
	}, a.swimmerDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, wire.FromSwimmer(s))
}

// handleDeleteSwimmer handles DELETE /swimmers/{id}
func (a *app) handleDeleteSwimmer(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteSwimmer(r.Context(), orchestrators.DeleteSwimmerInput{
		Actor: actor(r),
		ID:    r.PathValue("id"),
	}, a.swimmerDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
