package web

import (
	"net/http"

	"swimtrack/internal/adapters/http/middleware"
	"swimtrack/internal/domain/account"
)

// registerRoutes mounts every API route. Reads are public so the monitor and
// spectators need no login; writes need a role.
func (a *app) registerRoutes(mux *http.ServeMux) {
	staff := middleware.RequireRole(account.RoleOrganizer, account.RoleAdmin)
	counters := middleware.RequireRole(account.RoleReferee, account.RoleOrganizer, account.RoleAdmin)
	admins := middleware.RequireRole(account.RoleAdmin)
	// Only the credential endpoints are throttled: referees at one pool
	// often share an address and must be able to count laps.
	limited := middleware.RateLimit(a.limiter)

	h := func(f http.HandlerFunc) http.Handler { return f }

	mux.HandleFunc("GET /health", a.handleHealth)

	mux.Handle("POST /auth/login", limited(h(a.handleLogin)))
	mux.Handle("POST /auth/register", limited(h(a.handleRegister)))
	mux.HandleFunc("POST /auth/logout", a.handleLogout)
	mux.Handle("GET /auth/users", admins(h(a.handleListUsers)))
	mux.Handle("POST /auth/reset-password", admins(h(a.handleResetPassword)))

	mux.HandleFunc("GET /competitions", a.handleListCompetitions)
	mux.HandleFunc("GET /competitions/{id}", a.handleGetCompetition)
	mux.Handle("POST /competitions", staff(h(a.handleCreateCompetition)))
	mux.Handle("PUT /competitions/{id}", staff(h(a.handleUpdateCompetition)))
	mux.Handle("DELETE /competitions/{id}", staff(h(a.handleDeleteCompetition)))
	mux.HandleFunc("GET /competitions/{id}/stats", a.handleCompetitionStats)
	mux.HandleFunc("GET /competitions/{id}/team-stats", a.handleTeamStats)
	mux.HandleFunc("GET /competitions/{id}/swimmer-stats", a.handleSwimmerStats)
	mux.HandleFunc("GET /competitions/{id}/results.pdf", a.handleResultsPDF)

	mux.HandleFunc("GET /teams", a.handleListTeams)
	mux.HandleFunc("GET /teams/{id}", a.handleGetTeam)
	mux.Handle("POST /teams", staff(h(a.handleCreateTeam)))
	mux.Handle("PUT /teams/{id}", staff(h(a.handleUpdateTeam)))
	mux.Handle("DELETE /teams/{id}", staff(h(a.handleDeleteTeam)))

	mux.HandleFunc("GET /swimmers", a.handleListSwimmers)
	mux.HandleFunc("GET /swimmers/{id}", a.handleGetSwimmer)
	mux.Handle("POST /swimmers", staff(h(a.handleCreateSwimmer)))
	mux.Handle("PUT /swimmers/{id}", staff(h(a.handleUpdateSwimmer)))
	mux.Handle("DELETE /swimmers/{id}", staff(h(a.handleDeleteSwimmer)))

	mux.Handle("GET /referees", staff(h(a.handleListReferees)))
	mux.Handle("GET /referees/{id}", staff(h(a.handleGetReferee)))
	mux.Handle("POST /referees", staff(h(a.handleCreateReferee)))
	mux.Handle("DELETE /referees/{id}", staff(h(a.handleDeleteReferee)))
	mux.Handle("POST /referees/{id}/reset-password", staff(h(a.handleResetRefereePassword)))

	mux.HandleFunc("GET /swim-sessions", a.handleListSessions)
	mux.HandleFunc("GET /swim-sessions/{id}", a.handleGetSession)
	mux.Handle("POST /swim-sessions", counters(h(a.handleStartSession)))
	mux.Handle("PUT /swim-sessions/{id}", counters(h(a.handleUpdateSession)))

	mux.HandleFunc("GET /lap-counts", a.handleListLaps)
	mux.Handle("POST /lap-counts", counters(h(a.handleCountLap)))

	mux.HandleFunc("GET /monitor/{id}", a.handleMonitor)
	mux.Handle("GET /admin/perf", admins(h(a.handleAdminPerf)))
}
