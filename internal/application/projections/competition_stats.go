package projections

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	lapStore "swimtrack/internal/adapters/storage/lapcount"
	sessionStore "swimtrack/internal/adapters/storage/swimsession"
	swimmerStore "swimtrack/internal/adapters/storage/swimmer"
	teamStore "swimtrack/internal/adapters/storage/team"
	domainCompetition "swimtrack/internal/domain/competition"
	domainLap "swimtrack/internal/domain/lapcount"
	domainSession "swimtrack/internal/domain/swimsession"
	"swimtrack/internal/domain/stats"
	domainSwimmer "swimtrack/internal/domain/swimmer"
	domainTeam "swimtrack/internal/domain/team"
)

// StatsDeps holds dependencies for the statistics projections.
type StatsDeps struct {
	CompetitionStore CompetitionStore
	TeamStore        TeamStore
	SwimmerStore     SwimmerStore
	SessionStore     SwimSessionStore
	LapStore         LapCountStore
	Location         *time.Location // bird hours are counted in this zone
	Now              func() time.Time
}

func (d StatsDeps) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

// StatsQuery selects the competition to summarise.
type StatsQuery struct {
	CompetitionID string
}

// CompetitionStatsResult is the live leaderboard of one competition.
type CompetitionStatsResult struct {
	Competition domainCompetition.Competition
	Summary     stats.Summary
	Teams       []stats.TeamStat
	Swimmers    []stats.SwimmerStat
}

// competitionData is everything the leaderboard is derived from.
type competitionData struct {
	comp     domainCompetition.Competition
	teams    []domainTeam.Team
	swimmers []domainSwimmer.Swimmer
	sessions []domainSession.SwimSession
	laps     []domainLap.LapCount
}

// loadCompetitionData fetches the competition, then its rows in parallel.
// PRE: competitionID is non-empty
// POST: a missing competition returns an error wrapping storage.ErrNotFound
func loadCompetitionData(ctx context.Context, competitionID string, deps StatsDeps) (competitionData, error) {
	var data competitionData
	comp, err := deps.CompetitionStore.GetByID(ctx, competitionID)
	if err != nil {
		return data, fmt.Errorf("competition %s: %w", competitionID, err)
	}
	data.comp = comp

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.teams, err = deps.TeamStore.List(gctx, teamStore.ListFilter{CompetitionID: competitionID})
		return err
	})
	g.Go(func() error {
		var err error
		data.swimmers, err = deps.SwimmerStore.List(gctx, swimmerStore.ListFilter{CompetitionID: competitionID})
		return err
	})
	g.Go(func() error {
		var err error
		data.sessions, err = deps.SessionStore.List(gctx, sessionStore.ListFilter{CompetitionID: competitionID})
		return err
	})
	g.Go(func() error {
		var err error
		data.laps, err = deps.LapStore.List(gctx, lapStore.ListFilter{CompetitionID: competitionID})
		return err
	})
	if err := g.Wait(); err != nil {
		return competitionData{}, fmt.Errorf("load competition %s: %w", competitionID, err)
	}
	return data, nil
}

func (d competitionData) activeSessions() []stats.ActiveSwimmerSession {
	names := make(map[string]string, len(d.swimmers))
	for _, s := range d.swimmers {
		names[s.ID] = s.Name
	}
	var active []stats.ActiveSwimmerSession
	for _, s := range d.sessions {
		if s.IsActive {
			active = append(active, stats.ActiveSwimmerSession{Session: s, SwimmerName: names[s.SwimmerID]})
		}
	}
	return active
}

func (d competitionData) teamStats(loc *time.Location) []stats.TeamStat {
	return stats.TeamStats(d.teams, d.laps, d.activeSessions(), loc)
}

func (d competitionData) swimmerStats(loc *time.Location) []stats.SwimmerStat {
	return stats.SwimmerStats(d.swimmers, d.teams, d.laps, d.sessions, loc)
}

func (d competitionData) summary(now time.Time) stats.Summary {
	active := 0
	for _, s := range d.sessions {
		if s.IsActive {
			active++
		}
	}
	return stats.Summary{
		TotalLaps:      len(d.laps),
		ActiveSessions: active,
		ElapsedSeconds: d.comp.ElapsedSeconds(now),
	}
}

// QueryCompetitionStats builds the full leaderboard for a competition.
// PRE: query.CompetitionID is non-empty
// POST: teams and swimmers sorted by laps descending, ties in store order
func QueryCompetitionStats(ctx context.Context, query StatsQuery, deps StatsDeps) (CompetitionStatsResult, error) {
	data, err := loadCompetitionData(ctx, query.CompetitionID, deps)
	if err != nil {
		return CompetitionStatsResult{}, err
	}
	loc := deps.location()
	return CompetitionStatsResult{
		Competition: data.comp,
		Summary:     data.summary(deps.Now()),
		Teams:       data.teamStats(loc),
		Swimmers:    data.swimmerStats(loc),
	}, nil
}

// QueryTeamStats builds the team leaderboard only.
func QueryTeamStats(ctx context.Context, query StatsQuery, deps StatsDeps) ([]stats.TeamStat, error) {
	data, err := loadCompetitionData(ctx, query.CompetitionID, deps)
	if err != nil {
		return nil, err
	}
	return data.teamStats(deps.location()), nil
}

// QuerySwimmerStats builds the swimmer leaderboard only.
func QuerySwimmerStats(ctx context.Context, query StatsQuery, deps StatsDeps) ([]stats.SwimmerStat, error) {
	data, err := loadCompetitionData(ctx, query.CompetitionID, deps)
	if err != nil {
		return nil, err
	}
	return data.swimmerStats(deps.location()), nil
}
