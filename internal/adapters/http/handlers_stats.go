package web

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"swimtrack/internal/adapters/report"
	"swimtrack/internal/adapters/wire"
	"swimtrack/internal/application/orchestrators"
	"swimtrack/internal/application/projections"
	"swimtrack/internal/domain/competition"
)

func (a *app) statsDeps() projections.StatsDeps {
	return projections.StatsDeps{
		CompetitionStore: a.stores.CompetitionStore,
		TeamStore:        a.stores.TeamStore,
		SwimmerStore:     a.stores.SwimmerStore,
		SessionStore:     a.stores.SwimSessionStore,
		LapStore:         a.stores.LapCountStore,
		Location:         a.opts.Location,
		Now:              timeNow,
	}
}

// handleCompetitionStats handles GET /competitions/{id}/stats
func (a *app) handleCompetitionStats(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryCompetitionStats(r.Context(), projections.StatsQuery{CompetitionID: r.PathValue("id")}, a.statsDeps())
	if err != nil {
		notFoundOr(w, "Competition", err)
		return
	}
	writeData(w, http.StatusOK, wire.FromCompetitionStats(res.Competition, res.Summary, res.Teams, res.Swimmers))
}

// handleTeamStats handles GET /competitions/{id}/team-stats
func (a *app) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	rows, err := projections.QueryTeamStats(r.Context(), projections.StatsQuery{CompetitionID: r.PathValue("id")}, a.statsDeps())
	if err != nil {
		notFoundOr(w, "Competition", err)
		return
	}
	writeData(w, http.StatusOK, wire.FromTeamStats(rows))
}

// handleSwimmerStats handles GET /competitions/{id}/swimmer-stats
func (a *app) handleSwimmerStats(w http.ResponseWriter, r *http.Request) {
	rows, err := projections.QuerySwimmerStats(r.Context(), projections.StatsQuery{CompetitionID: r.PathValue("id")}, a.statsDeps())
	if err != nil {
		notFoundOr(w, "Competition", err)
		return
	}
	writeData(w, http.StatusOK, wire.FromSwimmerStats(rows))
}

// renderResults builds the results PDF of a competition.
func (a *app) renderResults(ctx context.Context, competitionID string) ([]byte, string, error) {
	rep, err := projections.QueryResultsReport(ctx, projections.ResultsReportQuery{CompetitionID: competitionID}, a.statsDeps())
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := report.RenderPDF(rep, &buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), rep.Filename, nil
}

// handleResultsPDF handles GET /competitions/{id}/results.pdf
func (a *app) handleResultsPDF(w http.ResponseWriter, r *http.Request) {
	pdf, filename, err := a.renderResults(r.Context(), r.PathValue("id"))
	if err != nil {
		notFoundOr(w, "Competition", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Write(pdf)
}

// notifyResults mails the results PDF to the organizer.
func (a *app) notifyResults(ctx context.Context, c competition.Competition) error {
	return orchestrators.ExecuteNotifyResults(ctx, c, orchestrators.NotifyResultsDeps{
		AccountStore:  a.stores.AccountStore,
		Notifier:      a.notifier,
		RenderResults: a.renderResults,
	})
}
