package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"swimtrack/internal/adapters/storage"
	lapStore "swimtrack/internal/adapters/storage/lapcount"
	"swimtrack/internal/adapters/storage/memory"
	domainCompetition "swimtrack/internal/domain/competition"
	domainLap "swimtrack/internal/domain/lapcount"
	domainSession "swimtrack/internal/domain/swimsession"
	domainSwimmer "swimtrack/internal/domain/swimmer"
	domainTeam "swimtrack/internal/domain/team"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// seedLeaderboard stores one competition where team-1 (Ana) has three laps
// and team-2 (Cas) one. Ana is still swimming, Cas has left the water.
func seedLeaderboard(t *testing.T) *memory.DB {
	t.Helper()
	ctx := context.Background()
	db := memory.New()

	start := fixedTime.Add(-time.Hour)
	comp := domainCompetition.Competition{
		ID: "comp-1", Name: "Harbour 24", Date: "2026-03-01", Location: "Harbour Pool",
		NumberOfLanes: 4, LaneLength: 25, DoubleCountTimeout: 15, OrganizerID: "org-1",
		Status: domainCompetition.StatusActive, ActualStartTime: &start, CreatedAt: fixedTime,
	}
	must(t, db.Competitions().Save(ctx, comp))
	must(t, db.Teams().Save(ctx, domainTeam.Team{ID: "team-1", Name: "Sharks", Color: "red", CompetitionID: "comp-1", AssignedLane: 1}))
	must(t, db.Teams().Save(ctx, domainTeam.Team{ID: "team-2", Name: "Otters", Color: "blue", CompetitionID: "comp-1", AssignedLane: 2}))
	for _, s := range []domainSwimmer.Swimmer{
		{ID: "sw-1", Name: "Ana", TeamID: "team-1", CompetitionID: "comp-1"},
		{ID: "sw-2", Name: "Ben", TeamID: "team-1", CompetitionID: "comp-1"},
		{ID: "sw-3", Name: "Cas", TeamID: "team-2", CompetitionID: "comp-1"},
	} {
		must(t, db.Swimmers().Save(ctx, s))
	}

	ana, _ := domainSession.New("s-1", "comp-1", "sw-1", "team-1", 1, fixedTime)
	cas, _ := domainSession.New("s-2", "comp-1", "sw-3", "team-2", 2, fixedTime)
	must(t, db.SwimSessions().Start(ctx, ana))
	must(t, db.SwimSessions().Start(ctx, cas))

	appendLap := func(id, session, team, swimmer string, lane int, at time.Time) {
		_, err := db.LapCounts().Append(ctx, lapStore.AppendRequest{
			Lap: domainLap.LapCount{
				ID: id, CompetitionID: "comp-1", LaneNumber: lane,
				TeamID: team, SwimmerID: swimmer, Timestamp: at,
			},
			SessionID:          session,
			MinIntervalSeconds: 15,
		})
		must(t, err)
	}
	appendLap("l-1", "s-1", "team-1", "sw-1", 1, fixedTime.Add(time.Minute))
	appendLap("l-2", "s-1", "team-1", "sw-1", 1, fixedTime.Add(2*time.Minute))
	appendLap("l-3", "s-1", "team-1", "sw-1", 1, fixedTime.Add(2*time.Minute+40*time.Second))
	appendLap("l-4", "s-2", "team-2", "sw-3", 2, fixedTime.Add(3*time.Minute))

	must(t, cas.End(fixedTime.Add(5*time.Minute)))
	must(t, db.SwimSessions().Save(ctx, cas))
	return db
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func statsDeps(db *memory.DB, now time.Time) StatsDeps {
	return StatsDeps{
		CompetitionStore: db.Competitions(),
		TeamStore:        db.Teams(),
		SwimmerStore:     db.Swimmers(),
		SessionStore:     db.SwimSessions(),
		LapStore:         db.LapCounts(),
		Location:         time.UTC,
		Now:              func() time.Time { return now },
	}
}

func TestQueryCompetitionStats(t *testing.T) {
	db := seedLeaderboard(t)
	deps := statsDeps(db, fixedTime.Add(10*time.Minute))

	res, err := QueryCompetitionStats(context.Background(), StatsQuery{CompetitionID: "comp-1"}, deps)
	if err != nil {
		t.Fatalf("QueryCompetitionStats: %v", err)
	}

	if res.Competition.ID != "comp-1" {
		t.Errorf("Competition.ID = %q", res.Competition.ID)
	}
	if res.Summary.TotalLaps != 4 || res.Summary.ActiveSessions != 1 {
		t.Errorf("Summary = %+v, want 4 laps and 1 active session", res.Summary)
	}
	if res.Summary.ElapsedSeconds != 70*60 {
		t.Errorf("ElapsedSeconds = %d, want %d", res.Summary.ElapsedSeconds, 70*60)
	}

	if len(res.Teams) != 2 || res.Teams[0].Team.ID != "team-1" {
		t.Fatalf("Teams = %+v, want team-1 first", res.Teams)
	}
	lead := res.Teams[0]
	if lead.TotalLaps != 3 {
		t.Errorf("team-1 laps = %d, want 3", lead.TotalLaps)
	}
	if lead.FastestLapMs == nil || *lead.FastestLapMs != 40000 {
		t.Errorf("team-1 fastest = %v, want 40000", lead.FastestLapMs)
	}
	if lead.ActiveSwimmer == nil || lead.ActiveSwimmer.Name != "Ana" || lead.ActiveSwimmer.LaneNumber != 1 {
		t.Errorf("team-1 active swimmer = %+v", lead.ActiveSwimmer)
	}
	if res.Teams[1].ActiveSwimmer != nil {
		t.Errorf("team-2 active swimmer = %+v, want nil", res.Teams[1].ActiveSwimmer)
	}
	if res.Teams[1].FastestLapMs != nil || res.Teams[1].LapsPerHour != 0 {
		t.Errorf("single lap team has rates: %+v", res.Teams[1].Rollup)
	}

	wantOrder := []string{"sw-1", "sw-3", "sw-2"}
	if len(res.Swimmers) != len(wantOrder) {
		t.Fatalf("Swimmers = %d rows, want %d", len(res.Swimmers), len(wantOrder))
	}
	for i, id := range wantOrder {
		if res.Swimmers[i].Swimmer.ID != id {
			t.Errorf("Swimmers[%d] = %s, want %s", i, res.Swimmers[i].Swimmer.ID, id)
		}
	}
	if cas := res.Swimmers[1]; cas.TotalWaterSeconds != 300 || cas.TeamName != "Otters" {
		t.Errorf("Cas = %+v, want 300s in the water for Otters", cas)
	}
	if res.Swimmers[0].TotalWaterSeconds != 0 {
		t.Errorf("active swimmer water time = %d, want 0", res.Swimmers[0].TotalWaterSeconds)
	}
}

func TestQueryTeamAndSwimmerStats(t *testing.T) {
	db := seedLeaderboard(t)
	deps := statsDeps(db, fixedTime)
	ctx := context.Background()

	teams, err := QueryTeamStats(ctx, StatsQuery{CompetitionID: "comp-1"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 2 || teams[0].TotalLaps != 3 || teams[1].TotalLaps != 1 {
		t.Errorf("teams = %+v", teams)
	}

	swimmers, err := QuerySwimmerStats(ctx, StatsQuery{CompetitionID: "comp-1"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(swimmers) != 3 || swimmers[2].TotalLaps != 0 {
		t.Errorf("swimmers = %+v", swimmers)
	}
}

func TestQueryCompetitionStats_BirdHoursUseLocation(t *testing.T) {
	db := seedLeaderboard(t)
	deps := statsDeps(db, fixedTime)
	// 12:01 UTC is 00:01 the next day at UTC+12.
	deps.Location = time.FixedZone("UTC+12", 12*60*60)

	res, err := QueryCompetitionStats(context.Background(), StatsQuery{CompetitionID: "comp-1"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Teams[0].LateBirdLaps; got != 3 {
		t.Errorf("late bird laps = %d, want 3", got)
	}
}

func TestQueryCompetitionStats_NotFound(t *testing.T) {
	db := memory.New()
	_, err := QueryCompetitionStats(context.Background(), StatsQuery{CompetitionID: "ghost"}, statsDeps(db, fixedTime))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want storage.ErrNotFound", err)
	}
}

func TestQueryCompetitionStats_Empty(t *testing.T) {
	db := memory.New()
	must(t, db.Competitions().Save(context.Background(), domainCompetition.Competition{
		ID: "c", Name: "Quiet", NumberOfLanes: 2, LaneLength: 25, Status: domainCompetition.StatusUpcoming,
	}))

	res, err := QueryCompetitionStats(context.Background(), StatsQuery{CompetitionID: "c"}, statsDeps(db, fixedTime))
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.TotalLaps != 0 || res.Summary.ElapsedSeconds != 0 || len(res.Teams) != 0 {
		t.Errorf("res = %+v", res)
	}
}

// failingLapStore simulates a storage outage while the leaderboard loads.
type failingLapStore struct{}

func (failingLapStore) List(context.Context, lapStore.ListFilter) ([]domainLap.LapCount, error) {
	return nil, errors.New("disk gone")
}

func TestQueryCompetitionStats_LoadFailure(t *testing.T) {
	db := seedLeaderboard(t)
	deps := statsDeps(db, fixedTime)
	deps.LapStore = failingLapStore{}

	if _, err := QueryCompetitionStats(context.Background(), StatsQuery{CompetitionID: "comp-1"}, deps); err == nil {
		t.Error("expected error when laps cannot be loaded")
	}
}
