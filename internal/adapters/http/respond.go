package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"swimtrack/internal/adapters/http/middleware"
	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/adapters/wire"
	"swimtrack/internal/application/listutil"
	"swimtrack/internal/application/orchestrators"
	"swimtrack/internal/domain/competition"
	"swimtrack/internal/domain/swimsession"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	middleware.WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeBody decodes an entity body. Unknown fields are ignored because
// remote peers send the full representation on update.
func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeData writes v inside the {"data": …} envelope.
func writeData[T any](w http.ResponseWriter, status int, v T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(wire.Envelope[T]{Data: v}); err != nil {
		slog.Warn("response_write_failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_write_failed", "error", err)
	}
}

func badJSON(w http.ResponseWriter) {
	middleware.WriteJSONError(w, http.StatusBadRequest, "Invalid JSON body")
}

// writeError maps orchestrator and domain errors to status codes.
// Anything unrecognised is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve  *orchestrators.ValidationError
		nf  *orchestrators.NotFoundError
		tsn *orchestrators.TooSoonError
	)
	switch {
	case errors.As(err, &ve):
		middleware.WriteJSONError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		middleware.WriteJSONError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, orchestrators.ErrAccountDisabled):
		middleware.WriteJSONError(w, http.StatusForbidden, "Account is disabled")
	case errors.Is(err, orchestrators.ErrForbidden):
		middleware.WriteJSONError(w, http.StatusForbidden, "Forbidden")
	case errors.As(err, &nf):
		middleware.WriteJSONError(w, http.StatusNotFound, nf.Error())
	case errors.Is(err, storage.ErrNotFound):
		middleware.WriteJSONError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, swimsession.ErrTeamAlreadySwimming),
		errors.Is(err, swimsession.ErrAlreadyEnded):
		middleware.WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, competition.ErrNotStarted),
		errors.Is(err, competition.ErrPaused),
		errors.Is(err, competition.ErrEnded),
		errors.Is(err, swimsession.ErrNoActiveSession):
		middleware.WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &tsn):
		w.Header().Set("Retry-After", strconv.Itoa(tsn.RetryAfter))
		writeJSON(w, http.StatusTooManyRequests, wire.ErrorBody{Error: tsn.Error(), RetryAfter: tsn.RetryAfter})
	default:
		internalError(w, err)
	}
}

// actor returns the caller as the orchestrators see it.
func actor(r *http.Request) orchestrators.Actor {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return orchestrators.Actor{}
	}
	return orchestrators.Actor{AccountID: sess.AccountID, Role: sess.Role}
}

// queryInt parses an optional integer query parameter. Absent or invalid
// values are 0.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

// parseWindow reads limit and offset, answering 400 when they are malformed.
func parseWindow(w http.ResponseWriter, r *http.Request) (listutil.Window, bool) {
	win, err := listutil.ParseWindow(r.URL.Query())
	if err != nil {
		middleware.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return listutil.Window{}, false
	}
	return win, true
}
