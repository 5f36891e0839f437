package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "swimtrack/internal/adapters/http"
	"swimtrack/internal/adapters/storage"
	accountStore "swimtrack/internal/adapters/storage/account"
	competitionStore "swimtrack/internal/adapters/storage/competition"
	lapStore "swimtrack/internal/adapters/storage/lapcount"
	refereeStore "swimtrack/internal/adapters/storage/referee"
	sessionStore "swimtrack/internal/adapters/storage/swimsession"
	swimmerStore "swimtrack/internal/adapters/storage/swimmer"
	teamStore "swimtrack/internal/adapters/storage/team"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  web.Stores
}

// skipUnlessEnabled keeps the browser suite out of plain `go test ./...`.
func skipUnlessEnabled(t *testing.T) {
	t.Helper()
	if os.Getenv("SWIMTRACK_BROWSER_TESTS") != "1" {
		t.Skip("set SWIMTRACK_BROWSER_TESTS=1 to run browser tests")
	}
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	skipUnlessEnabled(t)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	stores := web.Stores{
		AccountStore:     accountStore.NewSQLiteStore(db),
		CompetitionStore: competitionStore.NewSQLiteStore(db),
		TeamStore:        teamStore.NewSQLiteStore(db),
		SwimmerStore:     swimmerStore.NewSQLiteStore(db),
		RefereeStore:     refereeStore.NewSQLiteStore(db),
		SwimSessionStore: sessionStore.NewSQLiteStore(db),
		LapCountStore:    lapStore.NewSQLiteStore(db),
		Ping:             db.PingContext,
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	handler, err := web.NewMux(stores, web.Options{
		PollInterval: time.Second,
		Location:     time.UTC,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Shutdown(context.Background())
		db.Close()
	})
	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// waitForText polls a locator until its text equals want.
func waitForText(t *testing.T, loc playwright.Locator, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var got string
	for time.Now().Before(deadline) {
		text, err := loc.TextContent()
		if err == nil {
			got = text
			if got == want {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatalf("text = %q after %s, want %q", got, timeout, want)
}
