// Package report builds the competition results report and renders it as PDF.
package report

import (
	"fmt"
	"time"

	competitionDomain "swimtrack/internal/domain/competition"
	lapDomain "swimtrack/internal/domain/lapcount"
	"swimtrack/internal/domain/stats"
	swimmerDomain "swimtrack/internal/domain/swimmer"
	teamDomain "swimtrack/internal/domain/team"
)

// MaxSwimmerRows caps the swimmer table.
const MaxSwimmerRows = 20

// TimeFormat is used for every timestamp printed in the report.
const TimeFormat = "2006-01-02 15:04"

// Header describes the competition at the top of the report.
type Header struct {
	Name     string `json:"name" yaml:"name"`
	Date     string `json:"date" yaml:"date"`
	Location string `json:"location" yaml:"location"`
	Lanes    string `json:"lanes" yaml:"lanes"`
	Started  string `json:"started,omitempty" yaml:"started,omitempty"`
	Finished string `json:"finished,omitempty" yaml:"finished,omitempty"`
}

// TeamRow is one line of the team leaderboard.
type TeamRow struct {
	Rank        int    `json:"rank" yaml:"rank"`
	Team        string `json:"team" yaml:"team"`
	Lane        int    `json:"lane" yaml:"lane"`
	Laps        int    `json:"laps" yaml:"laps"`
	DistanceM   int    `json:"distanceM" yaml:"distance_m"`
	LapsPerHour string `json:"lapsPerHour" yaml:"laps_per_hour"`
	FastestLap  string `json:"fastestLap" yaml:"fastest_lap"`
}

// SwimmerRow is one line of the top swimmers table.
type SwimmerRow struct {
	Rank      int    `json:"rank" yaml:"rank"`
	Name      string `json:"name" yaml:"name"`
	Team      string `json:"team" yaml:"team"`
	Laps      int    `json:"laps" yaml:"laps"`
	DistanceM int    `json:"distanceM" yaml:"distance_m"`
}

// ResultsReport is everything the PDF shows.
type ResultsReport struct {
	Header      Header       `json:"header" yaml:"header"`
	Teams       []TeamRow    `json:"teams" yaml:"teams"`
	Swimmers    []SwimmerRow `json:"swimmers" yaml:"swimmers"`
	GeneratedAt string       `json:"generatedAt" yaml:"generated_at"`
	Filename    string       `json:"-" yaml:"-"` // download name
}

// BuildResultsReport projects raw competition data into report rows.
// Ranking and rounding come from the stats package so the report agrees
// with the live leaderboard.
// PRE: loc is non-nil
// POST: Teams holds every team, Swimmers at most MaxSwimmerRows
func BuildResultsReport(
	comp competitionDomain.Competition,
	teams []teamDomain.Team,
	swimmers []swimmerDomain.Swimmer,
	laps []lapDomain.LapCount,
	loc *time.Location,
	generatedAt time.Time,
) ResultsReport {
	r := ResultsReport{
		Header: Header{
			Name:     comp.Name,
			Date:     comp.Date,
			Location: comp.Location,
			Lanes:    fmt.Sprintf("%d × %dm", comp.NumberOfLanes, comp.LaneLength),
		},
		Teams:       []TeamRow{},
		Swimmers:    []SwimmerRow{},
		GeneratedAt: generatedAt.In(loc).Format(TimeFormat),
		Filename:    Filename(comp),
	}
	if comp.ActualStartTime != nil {
		r.Header.Started = comp.ActualStartTime.In(loc).Format(TimeFormat)
	}
	if comp.ActualEndTime != nil {
		r.Header.Finished = comp.ActualEndTime.In(loc).Format(TimeFormat)
	}

	for i, ts := range stats.TeamStats(teams, laps, nil, loc) {
		fastest := "-"
		if ts.FastestLapMs != nil {
			fastest = stats.FormatLapTime(*ts.FastestLapMs)
		}
		r.Teams = append(r.Teams, TeamRow{
			Rank:        i + 1,
			Team:        ts.Team.Name,
			Lane:        ts.Team.AssignedLane,
			Laps:        ts.TotalLaps,
			DistanceM:   stats.Distance(ts.TotalLaps, comp.LaneLength),
			LapsPerHour: stats.FormatLapsPerHour(ts.LapsPerHour),
			FastestLap:  fastest,
		})
	}

	for i, ss := range stats.SwimmerStats(swimmers, teams, laps, nil, loc) {
		if i == MaxSwimmerRows {
			break
		}
		teamName := ss.TeamName
		if teamName == "" {
			teamName = "-"
		}
		r.Swimmers = append(r.Swimmers, SwimmerRow{
			Rank:      i + 1,
			Name:      ss.Swimmer.Name,
			Team:      teamName,
			Laps:      ss.TotalLaps,
			DistanceM: stats.Distance(ss.TotalLaps, comp.LaneLength),
		})
	}
	return r
}

// Filename returns a download name for the competition's report.
func Filename(comp competitionDomain.Competition) string {
	slug := make([]rune, 0, len(comp.Name))
	dash := false
	for _, c := range comp.Name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			slug = append(slug, c)
			dash = false
		case c >= 'A' && c <= 'Z':
			slug = append(slug, c+'a'-'A')
			dash = false
		default:
			if !dash && len(slug) > 0 {
				slug = append(slug, '-')
				dash = true
			}
		}
	}
	name := string(slug)
	for len(name) > 0 && name[len(name)-1] == '-' {
		name = name[:len(name)-1]
	}
	if name == "" {
		name = "competition"
	}
	return name + "-results.pdf"
}
