package projections

import (
	"context"
	"time"
)

// MonitorQuery selects the competition shown on the public monitor.
type MonitorQuery struct {
	CompetitionID string
}

// MonitorResult is what the monitor page renders on each refresh.
type MonitorResult struct {
	CompetitionStatsResult
	PollInterval time.Duration
	GeneratedAt  time.Time
}

// QueryMonitor loads the leaderboard for the public monitor page.
// POST: PollInterval is at least one second
func QueryMonitor(ctx context.Context, query MonitorQuery, pollInterval time.Duration, deps StatsDeps) (MonitorResult, error) {
	res, err := QueryCompetitionStats(ctx, StatsQuery{CompetitionID: query.CompetitionID}, deps)
	if err != nil {
		return MonitorResult{}, err
	}
	if pollInterval < time.Second {
		pollInterval = time.Second
	}
	return MonitorResult{
		CompetitionStatsResult: res,
		PollInterval:           pollInterval,
		GeneratedAt:            deps.Now().In(deps.location()),
	}, nil
}
