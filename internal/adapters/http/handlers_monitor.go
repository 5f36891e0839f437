package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"swimtrack/internal/application/projections"
	"swimtrack/internal/domain/stats"
)

//go:embed templates/monitor.html
var templateFS embed.FS

var monitorTpl = template.Must(template.ParseFS(templateFS, "templates/monitor.html"))

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// monitorTopSwimmers caps the swimmer table on the big screen.
const monitorTopSwimmers = 10

type monitorTeamRow struct {
	Rank        int
	Name        string
	Color       string
	Lane        int
	Laps        int
	LapsPerHour string
	Fastest     string
	Swimming    string
}

type monitorSwimmerRow struct {
	Rank int
	Name string
	Team string
	Laps int
}

type monitorView struct {
	Name           string
	Status         string
	Description    template.HTML
	TotalLaps      int
	Distance       int
	ActiveSessions int
	Elapsed        string
	Teams          []monitorTeamRow
	Swimmers       []monitorSwimmerRow
	RefreshSeconds int
	GeneratedAt    string
}

func renderMarkdown(md string) template.HTML {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func formatElapsed(seconds int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

func newMonitorView(res projections.MonitorResult) monitorView {
	comp := res.Competition
	v := monitorView{
		Name:           comp.Name,
		Status:         comp.Status,
		Description:    renderMarkdown(comp.Description),
		TotalLaps:      res.Summary.TotalLaps,
		Distance:       stats.Distance(res.Summary.TotalLaps, comp.LaneLength),
		ActiveSessions: res.Summary.ActiveSessions,
		Elapsed:        formatElapsed(res.Summary.ElapsedSeconds),
		RefreshSeconds: int(res.PollInterval.Seconds()),
		GeneratedAt:    res.GeneratedAt.Format("15:04:05"),
	}
	for i, t := range res.Teams {
		row := monitorTeamRow{
			Rank:        i + 1,
			Name:        t.Team.Name,
			Color:       t.Team.Color,
			Lane:        t.Team.AssignedLane,
			Laps:        t.TotalLaps,
			LapsPerHour: stats.FormatLapsPerHour(t.LapsPerHour),
			Fastest:     "-",
			Swimming:    "-",
		}
		if t.FastestLapMs != nil {
			row.Fastest = stats.FormatLapTime(*t.FastestLapMs)
		}
		if t.ActiveSwimmer != nil {
			row.Swimming = t.ActiveSwimmer.Name
		}
		v.Teams = append(v.Teams, row)
	}
	for i, s := range res.Swimmers {
		if i == monitorTopSwimmers {
			break
		}
		v.Swimmers = append(v.Swimmers, monitorSwimmerRow{Rank: i + 1, Name: s.Swimmer.Name, Team: s.TeamName, Laps: s.TotalLaps})
	}
	return v
}

// handleMonitor handles GET /monitor/{id}: the public leaderboard page for
// the pool's big screen. It reloads itself every poll interval.
func (a *app) handleMonitor(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryMonitor(r.Context(), projections.MonitorQuery{CompetitionID: r.PathValue("id")}, a.opts.PollInterval, a.statsDeps())
	if err != nil {
		notFoundOr(w, "Competition", err)
		return
	}
	var buf bytes.Buffer
	if err := monitorTpl.Execute(&buf, newMonitorView(res)); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("response_write_failed", "error", err)
	}
}
