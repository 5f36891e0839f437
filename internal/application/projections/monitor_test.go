package projections

import (
	"context"
	"testing"
	"time"
)

func TestQueryMonitor(t *testing.T) {
	db := seedLeaderboard(t)
	deps := statsDeps(db, fixedTime)

	res, err := QueryMonitor(context.Background(), MonitorQuery{CompetitionID: "comp-1"}, 5*time.Second, deps)
	if err != nil {
		t.Fatalf("QueryMonitor: %v", err)
	}
	if res.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v", res.PollInterval)
	}
	if res.Summary.TotalLaps != 4 || len(res.Teams) != 2 {
		t.Errorf("stats = %+v", res.CompetitionStatsResult.Summary)
	}
	if !res.GeneratedAt.Equal(fixedTime) {
		t.Errorf("GeneratedAt = %v", res.GeneratedAt)
	}

	res, err = QueryMonitor(context.Background(), MonitorQuery{CompetitionID: "comp-1"}, 0, deps)
	if err != nil {
		t.Fatal(err)
	}
	if res.PollInterval != time.Second {
		t.Errorf("zero interval clamped to %v, want 1s", res.PollInterval)
	}
}
