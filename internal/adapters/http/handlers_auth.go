package web

import (
	"net/http"

	"swimtrack/internal/adapters/http/middleware"
	accountStore "swimtrack/internal/adapters/storage/account"
	"swimtrack/internal/adapters/wire"
	"swimtrack/internal/application/orchestrators"
)

// handleLogin handles POST /auth/login. The token works as a bearer token
// and is also set as the session cookie.
func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input wire.Credentials
	if err := strictDecode(r, &input); err != nil {
		badJSON(w)
		return
	}
	if input.Email == "" || input.Password == "" {
		middleware.WriteJSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	acct, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Login:    input.Email,
		Password: input.Password,
	}, orchestrators.LoginDeps{AccountStore: a.stores.AccountStore})
	if err != nil {
		writeError(w, err)
		return
	}

	sess, err := a.sessions.Create(acct.ID, acct.Login, acct.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, sess, a.opts.Production)
	writeData(w, http.StatusOK, wire.LoginResult{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt(),
		User:      wire.FromAccount(acct),
		Role:      acct.Role,
	})
}

// handleRegister handles POST /auth/register for organizer self-registration.
func (a *app) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input wire.Registration
	if err := strictDecode(r, &input); err != nil {
		badJSON(w)
		return
	}
	acct, err := orchestrators.ExecuteRegisterOrganizer(r.Context(), orchestrators.RegisterOrganizerInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Role:     input.Role,
	}, orchestrators.RegisterOrganizerDeps{
		AccountStore: a.stores.AccountStore,
		Notifier:     a.notifier,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, wire.FromAccount(acct))
}

// handleLogout handles POST /auth/logout. It always succeeds.
func (a *app) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" {
		a.sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w, a.opts.Production)
	w.WriteHeader(http.StatusNoContent)
}

// handleListUsers handles GET /auth/users (admin). Disabled accounts are hidden.
func (a *app) handleListUsers(w http.ResponseWriter, r *http.Request) {
	win, ok := parseWindow(w, r)
	if !ok {
		return
	}
	accounts, err := a.stores.AccountStore.List(r.Context(), accountStore.ListFilter{
		Role:   r.URL.Query().Get("role"),
		Limit:  win.Limit,
		Offset: win.Offset,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	users := make([]wire.User, 0, len(accounts))
	for _, acct := range accounts {
		if acct.Disabled {
			continue
		}
		users = append(users, wire.FromAccount(acct))
	}
	writeData(w, http.StatusOK, users)
}

// handleResetPassword handles POST /auth/reset-password (admin). The new
// password is returned once and every session of the user ends.
func (a *app) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var input wire.PasswordReset
	if err := strictDecode(r, &input); err != nil {
		badJSON(w)
		return
	}
	password, err := orchestrators.ExecuteResetPassword(r.Context(), orchestrators.ResetPasswordInput{
		Actor:  actor(r),
		UserID: input.UserID,
	}, orchestrators.ResetPasswordDeps{
		AccountStore: a.stores.AccountStore,
		Notifier:     a.notifier,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	a.sessions.DeleteAccount(input.UserID)
	writeData(w, http.StatusOK, wire.NewPassword{NewPassword: password})
}
