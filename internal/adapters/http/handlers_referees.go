package web

import (
	"net/http"

	refereeStore "swimtrack/internal/adapters/storage/referee"
	"swimtrack/internal/adapters/wire"
	"swimtrack/internal/application/orchestrators"
)

func (a *app) refereeDeps() orchestrators.RefereeDeps {
	return orchestrators.RefereeDeps{
		CompetitionStore: a.stores.CompetitionStore,
		RefereeStore:     a.stores.RefereeStore,
		AccountStore:     a.stores.AccountStore,
		GenerateID:       generateID,
		Now:              timeNow,
	}
}

// handleListReferees handles GET /referees?competitionId=&userId=
func (a *app) handleListReferees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	refs, err := a.stores.RefereeStore.List(r.Context(), refereeStore.ListFilter{
		CompetitionID: q.Get("competitionId"),
		UserID:        q.Get("userId"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]wire.Referee, 0, len(refs))
	for _, ref := range refs {
		out = append(out, wire.FromReferee(ref))
	}
	writeData(w, http.StatusOK, out)
}

// handleGetReferee handles GET /referees/{id}
func (a *app) handleGetReferee(w http.ResponseWriter, r *http.Request) {
	ref, err := a.stores.RefereeStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		notFoundOr(w, "Referee", err)
		return
	}
	writeData(w, http.StatusOK, wire.FromReferee(ref))
}

// handleCreateReferee handles POST /referees. The generated password is in
// this response only.
func (a *app) handleCreateReferee(w http.ResponseWriter, r *http.Request) {
	var input wire.CreateReferee
	if err := decodeBody(r, &input); err != nil {
		badJSON(w)
		return
	}
	created, err := orchestrators.ExecuteCreateReferee(r.Context(), orchestrators.CreateRefereeInput{
		Actor:         actor(r),
		ID:            input.ID,
		CompetitionID: input.CompetitionID,
		Email:         input.Email,
	}, a.refereeDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	out := wire.FromReferee(created.Referee)
	out.Password = created.Password
	writeData(w, http.StatusCreated, out)
}

// handleDeleteReferee handles DELETE /referees/{id}. Laps the referee
// counted are kept.
func (a *app) handleDeleteReferee(w http.ResponseWriter, r *http.Request) {
	ref, err := a.stores.RefereeStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		notFoundOr(w, "Referee", err)
		return
	}
	if err := orchestrators.ExecuteDeleteReferee(r.Context(), orchestrators.RefereeRef{
		Actor: actor(r),
		ID:    ref.ID,
	}, a.refereeDeps()); err != nil {
		writeError(w, err)
		return
	}
	a.sessions.DeleteAccount(ref.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// handleResetRefereePassword handles POST /referees/{id}/reset-password
func (a *app) handleResetRefereePassword(w http.ResponseWriter, r *http.Request) {
	ref, err := a.stores.RefereeStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		notFoundOr(w, "Referee", err)
		return
	}
	password, err := orchestrators.ExecuteResetRefereePassword(r.Context(), orchestrators.RefereeRef{
		Actor: actor(r),
		ID:    ref.ID,
	}, a.refereeDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	a.sessions.DeleteAccount(ref.UserID)
	writeData(w, http.StatusOK, wire.NewPassword{NewPassword: password})
}
