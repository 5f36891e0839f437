// Package stats derives leaderboard rows from raw lap records.
// Everything here is a pure function of its inputs.
package stats

import (
	"fmt"
	"sort"
	"time"

	"swimtrack/internal/domain/lapcount"
	"swimtrack/internal/domain/swimmer"
	"swimtrack/internal/domain/swimsession"
	"swimtrack/internal/domain/team"
)

// Bonus hours, in the competition's configured time zone.
const (
	LateBirdHour  = 0 // 00:00-00:59
	EarlyBirdHour = 5 // 05:00-05:59
)

// Rollup is the lap summary shared by teams and swimmers.
type Rollup struct {
	TotalLaps     int
	LapsPerHour   float64
	FastestLapMs  *int64 // nil with fewer than 2 laps
	LateBirdLaps  int
	EarlyBirdLaps int
}

// ActiveSwimmer identifies who is currently in the water for a team.
type ActiveSwimmer struct {
	SwimmerID  string
	Name       string
	LaneNumber int
}

// TeamStat is one leaderboard row for a team.
type TeamStat struct {
	Team team.Team
	Rollup
	ActiveSwimmer *ActiveSwimmer
}

// SwimmerStat is one leaderboard row for a swimmer.
type SwimmerStat struct {
	Swimmer   swimmer.Swimmer
	TeamName  string
	TeamColor string
	Rollup
	TotalWaterSeconds int64
}

// Summary is the competition-wide headline numbers.
type Summary struct {
	TotalLaps      int
	ActiveSessions int
	ElapsedSeconds int64
}

// Compute rolls up a set of laps belonging to one entity.
// PRE: laps all belong to the same team or swimmer; loc is non-nil
// POST: with fewer than 2 laps, LapsPerHour == 0 and FastestLapMs == nil
func Compute(laps []lapcount.LapCount, loc *time.Location) Rollup {
	r := Rollup{TotalLaps: len(laps)}
	for _, l := range laps {
		switch l.Timestamp.In(loc).Hour() {
		case LateBirdHour:
			r.LateBirdLaps++
		case EarlyBirdHour:
			r.EarlyBirdLaps++
		}
	}
	if len(laps) < 2 {
		return r
	}

	sorted := make([]time.Time, len(laps))
	for i, l := range laps {
		sorted[i] = l.Timestamp
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	fastest := sorted[1].Sub(sorted[0])
	for i := 2; i < len(sorted); i++ {
		if d := sorted[i].Sub(sorted[i-1]); d < fastest {
			fastest = d
		}
	}
	ms := fastest.Milliseconds()
	r.FastestLapMs = &ms

	duration := sorted[len(sorted)-1].Sub(sorted[0])
	if duration > 0 {
		r.LapsPerHour = float64(len(laps)) / duration.Hours()
	}
	return r
}

// ActiveSwimmerSession pairs an active session with its swimmer's name.
type ActiveSwimmerSession struct {
	Session     swimsession.SwimSession
	SwimmerName string
}

// TeamStats builds one row per team, most laps first.
// PRE: teams are in the desired tie-break order
// POST: rows sorted by TotalLaps descending; ties keep input order
func TeamStats(teams []team.Team, laps []lapcount.LapCount, active []ActiveSwimmerSession, loc *time.Location) []TeamStat {
	byTeam := make(map[string][]lapcount.LapCount, len(teams))
	for _, l := range laps {
		byTeam[l.TeamID] = append(byTeam[l.TeamID], l)
	}
	activeByTeam := make(map[string]ActiveSwimmerSession, len(active))
	for _, a := range active {
		if a.Session.IsActive {
			activeByTeam[a.Session.TeamID] = a
		}
	}

	rows := make([]TeamStat, 0, len(teams))
	for _, t := range teams {
		row := TeamStat{Team: t, Rollup: Compute(byTeam[t.ID], loc)}
		if a, ok := activeByTeam[t.ID]; ok {
			row.ActiveSwimmer = &ActiveSwimmer{
				SwimmerID:  a.Session.SwimmerID,
				Name:       a.SwimmerName,
				LaneNumber: a.Session.LaneNumber,
			}
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalLaps > rows[j].TotalLaps })
	return rows
}

// SwimmerStats builds one row per swimmer, most laps first.
// Water time sums ended sessions only.
func SwimmerStats(swimmers []swimmer.Swimmer, teams []team.Team, laps []lapcount.LapCount, sessions []swimsession.SwimSession, loc *time.Location) []SwimmerStat {
	bySwimmer := make(map[string][]lapcount.LapCount, len(swimmers))
	for _, l := range laps {
		bySwimmer[l.SwimmerID] = append(bySwimmer[l.SwimmerID], l)
	}
	teamByID := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}
	water := make(map[string]int64)
	for _, s := range sessions {
		if s.EndTime == nil {
			continue
		}
		water[s.SwimmerID] += s.WaterSeconds(*s.EndTime)
	}

	rows := make([]SwimmerStat, 0, len(swimmers))
	for _, s := range swimmers {
		t := teamByID[s.TeamID]
		rows = append(rows, SwimmerStat{
			Swimmer:           s,
			TeamName:          t.Name,
			TeamColor:         t.Color,
			Rollup:            Compute(bySwimmer[s.ID], loc),
			TotalWaterSeconds: water[s.ID],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalLaps > rows[j].TotalLaps })
	return rows
}

// Distance returns metres swum: each lap is out and back.
func Distance(laps, laneLength int) int {
	return laps * laneLength * 2
}

// FormatLapTime renders milliseconds as "Xm Ys" or "Ys".
func FormatLapTime(ms int64) string {
	secs := ms / 1000
	m, s := secs/60, secs%60
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatLapsPerHour renders a rate with one decimal, or "-" when zero.
func FormatLapsPerHour(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}
