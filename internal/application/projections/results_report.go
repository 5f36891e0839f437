package projections

import (
	"context"

	"swimtrack/internal/adapters/report"
)

// ResultsReportQuery selects the competition to report on.
type ResultsReportQuery struct {
	CompetitionID string
}

// QueryResultsReport assembles the printable results of a competition.
// Running competitions can be reported too; the figures are a snapshot.
// PRE: query.CompetitionID is non-empty
// POST: a missing competition returns an error wrapping storage.ErrNotFound
func QueryResultsReport(ctx context.Context, query ResultsReportQuery, deps StatsDeps) (report.ResultsReport, error) {
	data, err := loadCompetitionData(ctx, query.CompetitionID, deps)
	if err != nil {
		return report.ResultsReport{}, err
	}
	return report.BuildResultsReport(data.comp, data.teams, data.swimmers, data.laps, deps.location(), deps.Now()), nil
}
