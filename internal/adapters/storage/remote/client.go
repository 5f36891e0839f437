// Package remote implements the storage interfaces against a SwimTrack
// compatible REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/adapters/wire"
)

// DefaultTimeout bounds each remote call when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Endpoints maps each resource to its path on the remote API.
type Endpoints struct {
	Competitions string
	Teams        string
	Swimmers     string
	Referees     string
	SwimSessions string
	LapCounts    string
}

// DefaultEndpoints returns the paths a SwimTrack server exposes.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Competitions: "/competitions",
		Teams:        "/teams",
		Swimmers:     "/swimmers",
		Referees:     "/referees",
		SwimSessions: "/swim-sessions",
		LapCounts:    "/lap-counts",
	}
}

func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return "/" + strings.Trim(v, "/")
	}
	return Endpoints{
		Competitions: pick(e.Competitions, d.Competitions),
		Teams:        pick(e.Teams, d.Teams),
		Swimmers:     pick(e.Swimmers, d.Swimmers),
		Referees:     pick(e.Referees, d.Referees),
		SwimSessions: pick(e.SwimSessions, d.SwimSessions),
		LapCounts:    pick(e.LapCounts, d.LapCounts),
	}
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	Endpoints Endpoints
}

// APIError is a non-2xx response from the remote API.
type APIError struct {
	Status     int
	Message    string
	RetryAfter int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote api: %d %s", e.Status, e.Message)
}

// Unwrap maps 404 onto storage.ErrNotFound so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return storage.ErrNotFound
	}
	return nil
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client speaks the list/get/create/update/delete conventions of the API.
type Client struct {
	base      *url.URL
	token     string
	http      *http.Client
	endpoints Endpoints
}

// NewClient validates cfg and returns a client.
// PRE: cfg.BaseURL is an absolute http(s) URL
// POST: Returns a client with defaults applied, or an error
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote base url must be http or https, got %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:      base,
		token:     cfg.Token,
		http:      &http.Client{Timeout: timeout},
		endpoints: cfg.Endpoints.withDefaults(),
	}, nil
}

// Ping checks the remote /health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) list(ctx context.Context, resource string, query url.Values, out any) error {
	return c.doData(ctx, http.MethodGet, resource, query, nil, out)
}

func (c *Client) get(ctx context.Context, resource, id string, out any) error {
	return c.doData(ctx, http.MethodGet, itemPath(resource, id), nil, nil, out)
}

func (c *Client) create(ctx context.Context, resource string, body, out any) error {
	return c.doData(ctx, http.MethodPost, resource, nil, body, out)
}

func (c *Client) update(ctx context.Context, resource, id string, body, out any) error {
	return c.doData(ctx, http.MethodPut, itemPath(resource, id), nil, body, out)
}

// upsert updates the item and creates it when the server answers 404 or 405.
func (c *Client) upsert(ctx context.Context, resource, id string, body, out any) error {
	err := c.update(ctx, resource, id, body, out)
	switch StatusOf(err) {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		slog.Debug("remote_upsert_fallback", "resource", resource, "id", id, "status", StatusOf(err))
		return c.create(ctx, resource, body, out)
	}
	return err
}

func (c *Client) remove(ctx context.Context, resource, id string, out any) error {
	return c.doData(ctx, http.MethodDelete, itemPath(resource, id), nil, nil, out)
}

// doData unwraps the {"data": ...} envelope into out.
func (c *Client) doData(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if out == nil {
		return c.do(ctx, method, path, query, body, nil)
	}
	var env wire.Envelope[json.RawMessage]
	if err := c.do(ctx, method, path, query, body, &env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	slog.Debug("remote_call", "method", method, "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body wire.ErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.RetryAfter = body.RetryAfter
	}
	if v := resp.Header.Get("Retry-After"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiErr.RetryAfter = n
		}
	}
	return apiErr
}

func itemPath(resource, id string) string {
	return resource + "/" + url.PathEscape(id)
}
