package stats_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimtrack/internal/domain/lapcount"
	"swimtrack/internal/domain/stats"
	"swimtrack/internal/domain/swimmer"
	"swimtrack/internal/domain/swimsession"
	"swimtrack/internal/domain/team"
)

var day = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func lapsAt(teamID, swimmerID string, ts ...time.Time) []lapcount.LapCount {
	out := make([]lapcount.LapCount, len(ts))
	for i, t := range ts {
		out[i] = lapcount.LapCount{ID: teamID + swimmerID + t.String(), TeamID: teamID, SwimmerID: swimmerID, Timestamp: t, LapNumber: i + 1}
	}
	return out
}

func TestCompute_FewerThanTwoLaps(t *testing.T) {
	r := stats.Compute(nil, time.UTC)
	assert.Equal(t, 0, r.TotalLaps)
	assert.Zero(t, r.LapsPerHour)
	assert.Nil(t, r.FastestLapMs)

	r = stats.Compute(lapsAt("t1", "s1", day.Add(time.Hour)), time.UTC)
	assert.Equal(t, 1, r.TotalLaps)
	assert.Zero(t, r.LapsPerHour)
	assert.Nil(t, r.FastestLapMs)
}

func TestCompute_RateAndFastest(t *testing.T) {
	// out of order on purpose
	laps := lapsAt("t1", "s1",
		day.Add(10*time.Hour+30*time.Minute),
		day.Add(10*time.Hour),
		day.Add(10*time.Hour+40*time.Second),
		day.Add(11*time.Hour),
	)
	r := stats.Compute(laps, time.UTC)
	require.NotNil(t, r.FastestLapMs)
	assert.Equal(t, int64(40000), *r.FastestLapMs)
	assert.InDelta(t, 4.0, r.LapsPerHour, 1e-9)
}

func TestCompute_ZeroDuration(t *testing.T) {
	laps := lapsAt("t1", "s1", day, day)
	r := stats.Compute(laps, time.UTC)
	assert.Zero(t, r.LapsPerHour)
	require.NotNil(t, r.FastestLapMs)
	assert.Equal(t, int64(0), *r.FastestLapMs)
}

// TestCompute_BirdHours covers laps at hours 23, 0, 0, 5 and 12.
func TestCompute_BirdHours(t *testing.T) {
	laps := lapsAt("t1", "s1",
		day.Add(-time.Hour),
		day.Add(10*time.Minute),
		day.Add(50*time.Minute),
		day.Add(5*time.Hour+15*time.Minute),
		day.Add(12*time.Hour),
	)
	r := stats.Compute(laps, time.UTC)
	assert.Equal(t, 2, r.LateBirdLaps)
	assert.Equal(t, 1, r.EarlyBirdLaps)
}

func TestCompute_BirdHoursFollowLocation(t *testing.T) {
	loc := time.FixedZone("NZST", 12*3600)
	// 12:30 UTC is 00:30 in +12
	laps := lapsAt("t1", "s1", day.Add(12*time.Hour+30*time.Minute))
	r := stats.Compute(laps, loc)
	assert.Equal(t, 1, r.LateBirdLaps)
	assert.Equal(t, 0, stats.Compute(laps, time.UTC).LateBirdLaps)
}

// TestTeamStats_OrderingIsPermutationInvariant shuffles teams and laps repeatedly.
func TestTeamStats_OrderingIsPermutationInvariant(t *testing.T) {
	teams := []team.Team{
		{ID: "a", Name: "A", AssignedLane: 1},
		{ID: "b", Name: "B", AssignedLane: 2},
		{ID: "c", Name: "C", AssignedLane: 3},
		{ID: "d", Name: "D", AssignedLane: 4},
	}
	counts := map[string]int{"a": 3, "b": 7, "c": 1, "d": 5}
	var laps []lapcount.LapCount
	for id, n := range counts {
		for i := 0; i < n; i++ {
			laps = append(laps, lapcount.LapCount{TeamID: id, SwimmerID: id + "-s", Timestamp: day.Add(time.Duration(i) * time.Minute)})
		}
	}

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		rng.Shuffle(len(teams), func(i, j int) { teams[i], teams[j] = teams[j], teams[i] })
		rng.Shuffle(len(laps), func(i, j int) { laps[i], laps[j] = laps[j], laps[i] })

		rows := stats.TeamStats(teams, laps, nil, time.UTC)
		require.Len(t, rows, 4)
		got := []string{rows[0].Team.ID, rows[1].Team.ID, rows[2].Team.ID, rows[3].Team.ID}
		assert.Equal(t, []string{"b", "d", "a", "c"}, got)
	}
}

func TestTeamStats_TiesKeepInputOrder(t *testing.T) {
	teams := []team.Team{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	laps := lapsAt("z", "s", day)
	rows := stats.TeamStats(teams, laps, nil, time.UTC)
	assert.Equal(t, "z", rows[0].Team.ID)
	assert.Equal(t, "x", rows[1].Team.ID)
	assert.Equal(t, "y", rows[2].Team.ID)
}

func TestTeamStats_ActiveSwimmer(t *testing.T) {
	teams := []team.Team{{ID: "t1"}, {ID: "t2"}}
	active := []stats.ActiveSwimmerSession{{
		Session:     swimsession.SwimSession{TeamID: "t1", SwimmerID: "s1", LaneNumber: 2, IsActive: true},
		SwimmerName: "Ana",
	}}
	rows := stats.TeamStats(teams, nil, active, time.UTC)
	require.NotNil(t, rows[0].ActiveSwimmer)
	assert.Equal(t, "Ana", rows[0].ActiveSwimmer.Name)
	assert.Equal(t, 2, rows[0].ActiveSwimmer.LaneNumber)
	assert.Nil(t, rows[1].ActiveSwimmer)
}

func TestSwimmerStats(t *testing.T) {
	teams := []team.Team{{ID: "t1", Name: "Sharks", Color: "blue"}}
	swimmers := []swimmer.Swimmer{
		{ID: "s1", Name: "Ana", TeamID: "t1"},
		{ID: "s2", Name: "Ben", TeamID: "t1"},
	}
	laps := append(lapsAt("t1", "s2", day, day.Add(time.Minute)), lapsAt("t1", "s1", day.Add(time.Hour))...)
	end := day.Add(20 * time.Minute)
	sessions := []swimsession.SwimSession{
		{SwimmerID: "s2", StartTime: day, EndTime: &end},
		{SwimmerID: "s1", StartTime: day, IsActive: true},
	}

	rows := stats.SwimmerStats(swimmers, teams, laps, sessions, time.UTC)
	require.Len(t, rows, 2)
	assert.Equal(t, "s2", rows[0].Swimmer.ID)
	assert.Equal(t, 2, rows[0].TotalLaps)
	assert.Equal(t, int64(1200), rows[0].TotalWaterSeconds)
	assert.Equal(t, "Sharks", rows[0].TeamName)
	assert.Equal(t, int64(0), rows[1].TotalWaterSeconds)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, stats.Distance(0, 25))
	assert.Equal(t, 500, stats.Distance(10, 25))
	assert.Equal(t, 1000, stats.Distance(10, 50))
}

func TestFormatLapTime(t *testing.T) {
	assert.Equal(t, "0s", stats.FormatLapTime(0))
	assert.Equal(t, "42s", stats.FormatLapTime(42999))
	assert.Equal(t, "1m 0s", stats.FormatLapTime(60000))
	assert.Equal(t, "2m 5s", stats.FormatLapTime(125400))
}

func TestFormatLapsPerHour(t *testing.T) {
	assert.Equal(t, "-", stats.FormatLapsPerHour(0))
	assert.Equal(t, "12.3", stats.FormatLapsPerHour(12.345))
}
