package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, http.StatusNotFound, "Not found")
	if w.Code != http.StatusNotFound || w.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("status %d, type %q", w.Code, w.Header().Get("Content-Type"))
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Not found" {
		t.Errorf("body = %v", body)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests rejected")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IP throttled")
	}
}

func TestRateLimit_KeysByHostNotPort(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, time.Minute))(okHandler(http.StatusOK))

	send := func(addr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}
	if w := send("192.0.2.7:5000"); w.Code != http.StatusOK {
		t.Fatalf("first = %d", w.Code)
	}
	w := send("192.0.2.7:5001")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://pool.example.com", "https://club.example.com"})(okHandler(http.StatusOK))

	tests := []struct {
		name, method, origin string
		wantStatus           int
		wantOrigin           string
	}{
		{"listed origin echoed", http.MethodGet, "https://club.example.com", http.StatusOK, "https://club.example.com"},
		{"unlisted gets first", http.MethodGet, "https://evil.example.com", http.StatusOK, "https://pool.example.com"},
		{"no origin", http.MethodGet, "", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "https://pool.example.com", http.StatusNoContent, "https://pool.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/competitions", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	h := CORS([]string{"*"})(okHandler(http.StatusOK))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://anything.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://anything.example.com" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestAPIKey(t *testing.T) {
	h := APIKey("s3cret")(okHandler(http.StatusOK))

	tests := []struct {
		name, path, key string
		want            int
	}{
		{"missing", "/competitions", "", http.StatusUnauthorized},
		{"wrong", "/competitions", "nope", http.StatusUnauthorized},
		{"right", "/competitions", "s3cret", http.StatusOK},
		{"health exempt", "/health", "", http.StatusOK},
		{"login exempt", "/auth/login", "", http.StatusOK},
		{"register exempt", "/auth/register", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.key != "" {
				r.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	open := APIKey("")(okHandler(http.StatusOK))
	w := httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/competitions", nil))
	if w.Code != http.StatusOK {
		t.Errorf("disabled guard status = %d", w.Code)
	}
}

func TestBlockDatabaseFiles(t *testing.T) {
	h := BlockDatabaseFiles(okHandler(http.StatusOK))
	for path, want := range map[string]int{
		"/static/swimtrack.db":         http.StatusNotFound,
		"/swimtrack.db-wal":            http.StatusNotFound,
		"/backup.SQLITE3":              http.StatusNotFound,
		"/competitions/db":             http.StatusOK,
		"/static/style.css":            http.StatusOK,
		"/competitions/c1/results.pdf": http.StatusOK,
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", path, w.Code, want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(okHandler(http.StatusOK)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options"} {
		if w.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
}

func TestCSRF(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	h := CSRF(key, false, nil)(okHandler(http.StatusOK))

	tests := []struct {
		name        string
		contentType string
		cookie      bool
		bearer      bool
		want        int
	}{
		{"json with cookie", "application/json", true, false, http.StatusOK},
		{"form with bearer", "application/x-www-form-urlencoded", true, true, http.StatusOK},
		{"form without session", "application/x-www-form-urlencoded", false, false, http.StatusOK},
		{"form with cookie and no token", "application/x-www-form-urlencoded", true, false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader("x=1"))
			r.Header.Set("Content-Type", tt.contentType)
			if tt.cookie {
				r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok"})
			}
			if tt.bearer {
				r.Header.Set("Authorization", "Bearer tok")
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler(http.StatusOK), mark("inner"), mark("outer"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}

func TestOriginHosts(t *testing.T) {
	got := originHosts([]string{"https://pool.example.com", "*", "club.example.com", "http://localhost:5173"})
	want := []string{"pool.example.com", "club.example.com", "localhost:5173"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("originHosts = %v, want %v", got, want)
	}
}
