package web

import (
	"errors"
	"net/http"

	"swimtrack/internal/adapters/http/middleware"
	"swimtrack/internal/adapters/storage"
	competitionStore "swimtrack/internal/adapters/storage/competition"
	"swimtrack/internal/adapters/wire"
	"swimtrack/internal/application/orchestrators"
	"swimtrack/internal/domain/competition"
)

// handleListCompetitions handles GET /competitions?organizerId=&status=
func (a *app) handleListCompetitions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !validStatus(q.Get("status")) {
		middleware.WriteJSONError(w, http.StatusBadRequest, competition.ErrInvalidStatus.Error())
		return
	}
	comps, err := a.stores.CompetitionStore.List(r.Context(), competitionStore.ListFilter{
		OrganizerID: q.Get("organizerId"),
		Status:      q.Get("status"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]wire.Competition, 0, len(comps))
	for _, c := range comps {
		out = append(out, wire.FromCompetition(c))
	}
	writeData(w, http.StatusOK, out)
}

// handleGetCompetition handles GET /competitions/{id}
func (a *app) handleGetCompetition(w http.ResponseWriter, r *http.Request) {
	c, err := a.stores.CompetitionStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		notFoundOr(w, "Competition", err)
		return
	}
	writeData(w, http.StatusOK, wire.FromCompetition(c))
}

// handleCreateCompetition handles POST /competitions
func (a *app) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var patch wire.CompetitionPatch
	if err := decodeBody(r, &patch); err != nil {
		badJSON(w)
		return
	}
	c, err := orchestrators.ExecuteCreateCompetition(r.Context(), orchestrators.CreateCompetitionInput{
		Actor: actor(r),
		ID:    patch.ID,
		Apply: patch.Apply,
	}, orchestrators.CreateCompetitionDeps{
		CompetitionStore: a.stores.CompetitionStore,
		AccountStore:     a.stores.AccountStore,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, wire.FromCompetition(c))
}

// handleUpdateCompetition handles PUT /competitions/{id}. A status change
// stamps the actual start or end time; finishing closes every session.
func (a *app) handleUpdateCompetition(w http.ResponseWriter, r *http.Request) {
	var patch wire.CompetitionPatch
	if err := decodeBody(r, &patch); err != nil {
		badJSON(w)
		return
	}
	c, err := orchestrators.ExecuteUpdateCompetition(r.Context(), orchestrators.UpdateCompetitionInput{
		Actor:  actor(r),
		ID:     r.PathValue("id"),
		Apply:  patch.Apply,
		Status: patch.Status,
	}, orchestrators.UpdateCompetitionDeps{
		CompetitionStore: a.stores.CompetitionStore,
		AccountStore:     a.stores.AccountStore,
		SessionStore:     a.stores.SwimSessionStore,
		OnFinished:       a.onFinished,
		Now:              timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, wire.FromCompetition(c))
}

// handleDeleteCompetition handles DELETE /competitions/{id} and reports how
// many dependent rows went with it.
func (a *app) handleDeleteCompetition(w http.ResponseWriter, r *http.Request) {
	counts, err := orchestrators.ExecuteDeleteCompetition(r.Context(), orchestrators.DeleteCompetitionInput{
		Actor: actor(r),
		ID:    r.PathValue("id"),
	}, orchestrators.DeleteCompetitionDeps{
		CompetitionStore: a.stores.CompetitionStore,
		RefereeStore:     a.stores.RefereeStore,
		AccountStore:     a.stores.AccountStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, wire.Deleted[competitionStore.DeleteCounts]{Deleted: counts})
}

// notFoundOr answers 404 "<resource> not found" for a store miss and 500
// for anything else.
func notFoundOr(w http.ResponseWriter, resource string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		middleware.WriteJSONError(w, http.StatusNotFound, resource+" not found")
		return
	}
	internalError(w, err)
}

// validStatus reports whether a status filter names a real status.
func validStatus(s string) bool {
	return s == "" || competition.IsValidStatus(s)
}
