package web

import (
	"context"
	"net/http"
	"time"

	"swimtrack/internal/adapters/http/middleware"
)

// healthTimeout bounds the backend check behind /health.
const healthTimeout = 3 * time.Second

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

// handleHealth handles GET /health: 200 when the backend answers, 503 when not.
func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{Status: "ok", Database: "ok", Version: a.opts.Version}
	status := http.StatusOK
	if a.stores.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := a.stores.Ping(ctx); err != nil {
			body.Status, body.Database = "degraded", "error"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, body)
}

// handleAdminPerf handles GET /admin/perf?minutes=&top= (admin): request and
// query latency over the recent window.
func (a *app) handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if a.opts.Collector == nil {
		middleware.WriteJSONError(w, http.StatusNotFound, "Performance collection is disabled")
		return
	}
	minutes := queryInt(r, "minutes")
	if minutes <= 0 {
		minutes = 60
	}
	top := queryInt(r, "top")
	if top <= 0 {
		top = 10
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeData(w, http.StatusOK, a.opts.Collector.Snapshot(since, top))
}
