package wire

import (
	"math"
	"time"

	competitionDomain "swimtrack/internal/domain/competition"
	"swimtrack/internal/domain/stats"
)

// StatsCompetition is the competition header of a stats response.
type StatsCompetition struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	NumberOfLanes   int        `json:"numberOfLanes"`
	ActualStartTime *time.Time `json:"actualStartTime"`
	ActualEndTime   *time.Time `json:"actualEndTime"`
}

// StatsTeam identifies the team a leaderboard row belongs to.
type StatsTeam struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	AssignedLane int    `json:"assignedLane"`
}

// ActiveSwimmer is the swimmer currently in the water for a team.
type ActiveSwimmer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LaneNumber int    `json:"laneNumber"`
}

// TeamStat is one team leaderboard row.
type TeamStat struct {
	Team          StatsTeam      `json:"team"`
	TotalLaps     int            `json:"totalLaps"`
	LateBirdLaps  int            `json:"lateBirdLaps"`
	EarlyBirdLaps int            `json:"earlyBirdLaps"`
	LapsPerHour   float64        `json:"lapsPerHour"`
	FastestLapMs  *int64         `json:"fastestLapMs"`
	ActiveSwimmer *ActiveSwimmer `json:"activeSwimmer"`
}

// StatsSwimmer identifies the swimmer a leaderboard row belongs to.
type StatsSwimmer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeamID    string `json:"teamId"`
	TeamName  string `json:"teamName"`
	TeamColor string `json:"teamColor"`
	IsUnder12 bool   `json:"isUnder12"`
}

// SwimmerStat is one swimmer leaderboard row.
type SwimmerStat struct {
	Swimmer           StatsSwimmer `json:"swimmer"`
	TotalLaps         int          `json:"totalLaps"`
	LateBirdLaps      int          `json:"lateBirdLaps"`
	EarlyBirdLaps     int          `json:"earlyBirdLaps"`
	LapsPerHour       float64      `json:"lapsPerHour"`
	FastestLapMs      *int64       `json:"fastestLapMs"`
	TotalWaterSeconds int64        `json:"totalWaterSeconds"`
}

// CompetitionStats is the body of GET /competitions/{id}/stats.
type CompetitionStats struct {
	Competition    StatsCompetition `json:"competition"`
	TotalLaps      int              `json:"totalLaps"`
	ActiveSessions int              `json:"activeSessions"`
	ElapsedSeconds int64            `json:"elapsedSeconds"`
	TeamStats      []TeamStat       `json:"teamStats"`
	SwimmerStats   []SwimmerStat    `json:"swimmerStats"`
}

// FromCompetitionStats converts a computed leaderboard.
func FromCompetitionStats(c competitionDomain.Competition, s stats.Summary, teams []stats.TeamStat, swimmers []stats.SwimmerStat) CompetitionStats {
	return CompetitionStats{
		Competition: StatsCompetition{
			ID:              c.ID,
			Name:            c.Name,
			Status:          c.Status,
			NumberOfLanes:   c.NumberOfLanes,
			ActualStartTime: c.ActualStartTime,
			ActualEndTime:   c.ActualEndTime,
		},
		TotalLaps:      s.TotalLaps,
		ActiveSessions: s.ActiveSessions,
		ElapsedSeconds: s.ElapsedSeconds,
		TeamStats:      FromTeamStats(teams),
		SwimmerStats:   FromSwimmerStats(swimmers),
	}
}

// FromTeamStats converts team rows. The result is never nil.
func FromTeamStats(rows []stats.TeamStat) []TeamStat {
	out := make([]TeamStat, 0, len(rows))
	for _, r := range rows {
		ts := TeamStat{
			Team: StatsTeam{
				ID:           r.Team.ID,
				Name:         r.Team.Name,
				Color:        r.Team.Color,
				AssignedLane: r.Team.AssignedLane,
			},
			TotalLaps:     r.TotalLaps,
			LateBirdLaps:  r.LateBirdLaps,
			EarlyBirdLaps: r.EarlyBirdLaps,
			LapsPerHour:   round2(r.LapsPerHour),
			FastestLapMs:  r.FastestLapMs,
		}
		if a := r.ActiveSwimmer; a != nil {
			ts.ActiveSwimmer = &ActiveSwimmer{ID: a.SwimmerID, Name: a.Name, LaneNumber: a.LaneNumber}
		}
		out = append(out, ts)
	}
	return out
}

// FromSwimmerStats converts swimmer rows. The result is never nil.
func FromSwimmerStats(rows []stats.SwimmerStat) []SwimmerStat {
	out := make([]SwimmerStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, SwimmerStat{
			Swimmer: StatsSwimmer{
				ID:        r.Swimmer.ID,
				Name:      r.Swimmer.Name,
				TeamID:    r.Swimmer.TeamID,
				TeamName:  r.TeamName,
				TeamColor: r.TeamColor,
				IsUnder12: r.Swimmer.IsUnder12,
			},
			TotalLaps:         r.TotalLaps,
			LateBirdLaps:      r.LateBirdLaps,
			EarlyBirdLaps:     r.EarlyBirdLaps,
			LapsPerHour:       round2(r.LapsPerHour),
			FastestLapMs:      r.FastestLapMs,
			TotalWaterSeconds: r.TotalWaterSeconds,
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
