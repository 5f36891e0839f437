package web

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"swimtrack/internal/adapters/email"
	"swimtrack/internal/adapters/http/middleware"
	"swimtrack/internal/adapters/http/perf"
	accountStore "swimtrack/internal/adapters/storage/account"
	competitionStore "swimtrack/internal/adapters/storage/competition"
	lapStore "swimtrack/internal/adapters/storage/lapcount"
	refereeStore "swimtrack/internal/adapters/storage/referee"
	sessionStore "swimtrack/internal/adapters/storage/swimsession"
	swimmerStore "swimtrack/internal/adapters/storage/swimmer"
	teamStore "swimtrack/internal/adapters/storage/team"
	"swimtrack/internal/domain/competition"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	CompetitionStore competitionStore.Store
	TeamStore        teamStore.Store
	SwimmerStore     swimmerStore.Store
	RefereeStore     refereeStore.Store
	SwimSessionStore sessionStore.Store
	LapCountStore    lapStore.Store
	// Ping checks the backend for /health. Optional.
	Ping func(ctx context.Context) error
}

// Notifier sends the mails the HTTP flows trigger.
type Notifier interface {
	Enabled(kind string) bool
	OrganizerRegistered(ctx context.Context, login, name string) error
	PasswordReset(ctx context.Context, login, name string) error
	CompetitionResult(ctx context.Context, to, competitionName, filename string, pdf []byte) error
}

// Options configures the HTTP surface.
type Options struct {
	StaticDir string
	// CSRFKey must be 32 bytes. Outside production a random key is used when empty.
	CSRFKey     []byte
	APIKey      string
	CORSOrigins []string
	// AuthRateLimit caps login and register attempts per minute per IP.
	AuthRateLimit int
	Production    bool
	PollInterval  time.Duration
	Location      *time.Location
	Version       string
	Notifier      Notifier // nil sends nothing
	Collector     *perf.Collector
	SlowRequest   time.Duration
}

// Version is reported by /health when Options.Version is empty.
const Version = "1.0.0"

// app carries the dependencies every handler shares.
type app struct {
	stores   Stores
	opts     Options
	sessions *middleware.SessionStore
	notifier Notifier
	limiter  *middleware.RateLimiter
}

// loadCSRFKey returns the configured key. In production the key MUST be set.
// In development a random key is generated per startup.
func loadCSRFKey(key []byte, production bool) ([]byte, error) {
	if len(key) > 0 {
		if len(key) != 32 {
			return nil, errors.New("csrf key must be 32 bytes")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("csrf key is required in production")
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	slog.Warn("csrf_key_random", "hint", "sessions won't survive restart; set security.csrf_key for production")
	return key, nil
}

// NewMux wires HTTP handlers for the app.
// PRE: every store in s is non-nil
// POST: Returns the handler with the full middleware chain applied
func NewMux(s Stores, opts Options) (http.Handler, error) {
	csrfKey, err := loadCSRFKey(opts.CSRFKey, opts.Production)
	if err != nil {
		return nil, err
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Version == "" {
		opts.Version = Version
	}
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = 10
	}

	a := &app{
		stores:   s,
		opts:     opts,
		sessions: middleware.NewSessionStore(),
		notifier: opts.Notifier,
		limiter:  middleware.NewRateLimiter(opts.AuthRateLimit, time.Minute),
	}
	if a.notifier == nil {
		a.notifier = email.NewNotifier(email.NewNoopSender(), email.NotifierConfig{})
	}

	mux := http.NewServeMux()
	if opts.StaticDir != "" {
		if _, err := os.Stat(opts.StaticDir); err == nil {
			mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
		}
	}
	a.registerRoutes(mux)

	// Apply middleware: Timing -> SecurityHeaders -> CORS -> BlockDatabaseFiles -> APIKey -> Auth -> CSRF -> Mux
	return middleware.Chain(jsonFallback(mux),
		middleware.CSRF(csrfKey, opts.Production, opts.CORSOrigins),
		middleware.Auth(a.sessions),
		middleware.APIKey(opts.APIKey),
		middleware.BlockDatabaseFiles,
		middleware.CORS(opts.CORSOrigins),
		middleware.SecurityHeaders,
		middleware.Timing(opts.Collector, mux, opts.SlowRequest),
	), nil
}

// jsonFallback answers unrouted requests with the API's JSON 404 and 405
// bodies instead of the mux's plain text.
func jsonFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}
		probe := &statusProbe{header: http.Header{}}
		h.ServeHTTP(probe, r)
		if probe.status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", probe.header.Get("Allow"))
			middleware.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		middleware.WriteJSONError(w, http.StatusNotFound, "Not found")
	})
}

// statusProbe records the status a handler picked and discards the body.
type statusProbe struct {
	header http.Header
	status int
}

func (p *statusProbe) Header() http.Header { return p.header }

func (p *statusProbe) Write(b []byte) (int, error) { return len(b), nil }

func (p *statusProbe) WriteHeader(status int) {
	if p.status == 0 {
		p.status = status
	}
}

// onFinished mails the results once a competition ends. Delivery runs in the
// background so the status change returns immediately.
func (a *app) onFinished(ctx context.Context, c competition.Competition) {
	if !a.notifier.Enabled(email.KindCompetitionResult) {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := a.notifyResults(ctx, c); err != nil {
			slog.Warn("notification_event", "event", "notification_failed", "kind", email.KindCompetitionResult, "competition_id", c.ID, "error", err)
		}
	}()
}
