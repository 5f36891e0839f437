package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	competitionStore "swimtrack/internal/adapters/storage/competition"
	lapStore "swimtrack/internal/adapters/storage/lapcount"
	refereeStore "swimtrack/internal/adapters/storage/referee"
	sessionStore "swimtrack/internal/adapters/storage/swimsession"
	swimmerStore "swimtrack/internal/adapters/storage/swimmer"
	teamStore "swimtrack/internal/adapters/storage/team"
	"swimtrack/internal/adapters/wire"
	competitionDomain "swimtrack/internal/domain/competition"
	lapDomain "swimtrack/internal/domain/lapcount"
	refereeDomain "swimtrack/internal/domain/referee"
	sessionDomain "swimtrack/internal/domain/swimsession"
	swimmerDomain "swimtrack/internal/domain/swimmer"
	teamDomain "swimtrack/internal/domain/team"
)

var (
	_ competitionStore.Store = (*CompetitionStore)(nil)
	_ teamStore.Store        = (*TeamStore)(nil)
	_ swimmerStore.Store     = (*SwimmerStore)(nil)
	_ refereeStore.Store     = (*RefereeStore)(nil)
	_ sessionStore.Store     = (*SwimSessionStore)(nil)
	_ lapStore.Store         = (*LapCountStore)(nil)
)

// Competitions returns the competition store.
func (c *Client) Competitions() *CompetitionStore { return &CompetitionStore{c: c} }

// Teams returns the team store.
func (c *Client) Teams() *TeamStore { return &TeamStore{c: c} }

// Swimmers returns the swimmer store.
func (c *Client) Swimmers() *SwimmerStore { return &SwimmerStore{c: c} }

// Referees returns the referee store.
func (c *Client) Referees() *RefereeStore { return &RefereeStore{c: c} }

// SwimSessions returns the swim session store.
func (c *Client) SwimSessions() *SwimSessionStore { return &SwimSessionStore{c: c} }

// LapCounts returns the lap count store.
func (c *Client) LapCounts() *LapCountStore { return &LapCountStore{c: c} }

// CompetitionStore implements competition.Store over HTTP.
type CompetitionStore struct{ c *Client }

// GetByID fetches one competition.
func (s *CompetitionStore) GetByID(ctx context.Context, id string) (competitionDomain.Competition, error) {
	var w wire.Competition
	if err := s.c.get(ctx, s.c.endpoints.Competitions, id, &w); err != nil {
		return competitionDomain.Competition{}, err
	}
	return w.Domain(), nil
}

// List fetches competitions matching filter.
func (s *CompetitionStore) List(ctx context.Context, filter competitionStore.ListFilter) ([]competitionDomain.Competition, error) {
	q := url.Values{}
	setParam(q, "organizerId", filter.OrganizerID)
	setParam(q, "status", filter.Status)
	var ws []wire.Competition
	if err := s.c.list(ctx, s.c.endpoints.Competitions, q, &ws); err != nil {
		return nil, err
	}
	out := make([]competitionDomain.Competition, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Domain())
	}
	return out, nil
}

// Save upserts a competition.
func (s *CompetitionStore) Save(ctx context.Context, value competitionDomain.Competition) error {
	return s.c.upsert(ctx, s.c.endpoints.Competitions, value.ID, wire.FromCompetition(value), nil)
}

// Delete removes a competition. The remote server performs the cascade and
// reports the counts.
func (s *CompetitionStore) Delete(ctx context.Context, id string) (competitionStore.DeleteCounts, error) {
	var body wire.Deleted[competitionStore.DeleteCounts]
	if err := s.c.remove(ctx, s.c.endpoints.Competitions, id, &body); err != nil {
		return competitionStore.DeleteCounts{}, err
	}
	return body.Deleted, nil
}

// TeamStore implements team.Store over HTTP.
type TeamStore struct{ c *Client }

// GetByID fetches one team.
func (s *TeamStore) GetByID(ctx context.Context, id string) (teamDomain.Team, error) {
	var w wire.Team
	if err := s.c.get(ctx, s.c.endpoints.Teams, id, &w); err != nil {
		return teamDomain.Team{}, err
	}
	return w.Domain(), nil
}

// List fetches teams matching filter.
func (s *TeamStore) List(ctx context.Context, filter teamStore.ListFilter) ([]teamDomain.Team, error) {
	q := url.Values{}
	setParam(q, "competitionId", filter.CompetitionID)
	if filter.LaneNumber > 0 {
		q.Set("laneNumber", strconv.Itoa(filter.LaneNumber))
	}
	var ws []wire.Team
	if err := s.c.list(ctx, s.c.endpoints.Teams, q, &ws); err != nil {
		return nil, err
	}
	out := make([]teamDomain.Team, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Domain())
	}
	return out, nil
}

// Save upserts a team.
func (s *TeamStore) Save(ctx context.Context, value teamDomain.Team) error {
	return s.c.upsert(ctx, s.c.endpoints.Teams, value.ID, wire.FromTeam(value), nil)
}

// Delete removes a team.
func (s *TeamStore) Delete(ctx context.Context, id string) error {
	return s.c.remove(ctx, s.c.endpoints.Teams, id, nil)
}

// SwimmerStore implements swimmer.Store over HTTP.
type SwimmerStore struct{ c *Client }

// GetByID fetches one swimmer.
func (s *SwimmerStore) GetByID(ctx context.Context, id string) (swimmerDomain.Swimmer, error) {
	var w wire.Swimmer
	if err := s.c.get(ctx, s.c.endpoints.Swimmers, id, &w); err != nil {
		return swimmerDomain.Swimmer{}, err
	}
	return w.Domain(), nil
}

// List fetches swimmers matching filter.
func (s *SwimmerStore) List(ctx context.Context, filter swimmerStore.ListFilter) ([]swimmerDomain.Swimmer, error) {
	q := url.Values{}
	setParam(q, "competitionId", filter.CompetitionID)
	setParam(q, "teamId", filter.TeamID)
	var ws []wire.Swimmer
	if err := s.c.list(ctx, s.c.endpoints.Swimmers, q, &ws); err != nil {
		return nil, err
	}
	out := make([]swimmerDomain.Swimmer, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Domain())
	}
	return out, nil
}

// Save upserts a swimmer.
func (s *SwimmerStore) Save(ctx context.Context, value swimmerDomain.Swimmer) error {
	return s.c.upsert(ctx, s.c.endpoints.Swimmers, value.ID, wire.FromSwimmer(value), nil)
}

// Delete removes a swimmer.
func (s *SwimmerStore) Delete(ctx context.Context, id string) error {
	return s.c.remove(ctx, s.c.endpoints.Swimmers, id, nil)
}

// RefereeStore implements referee.Store over HTTP.
type RefereeStore struct{ c *Client }

// GetByID fetches one referee.
func (s *RefereeStore) GetByID(ctx context.Context, id string) (refereeDomain.Referee, error) {
	var w wire.Referee
	if err := s.c.get(ctx, s.c.endpoints.Referees, id, &w); err != nil {
		return refereeDomain.Referee{}, err
	}
	return w.Domain(), nil
}

// List fetches referees matching filter.
func (s *RefereeStore) List(ctx context.Context, filter refereeStore.ListFilter) ([]refereeDomain.Referee, error) {
	q := url.Values{}
	setParam(q, "competitionId", filter.CompetitionID)
	setParam(q, "userId", filter.UserID)
	var ws []wire.Referee
	if err := s.c.list(ctx, s.c.endpoints.Referees, q, &ws); err != nil {
		return nil, err
	}
	out := make([]refereeDomain.Referee, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Domain())
	}
	return out, nil
}

// Save upserts a referee.
func (s *RefereeStore) Save(ctx context.Context, value refereeDomain.Referee) error {
	return s.c.upsert(ctx, s.c.endpoints.Referees, value.ID, wire.FromReferee(value), nil)
}

// Delete removes a referee. The server keeps its laps.
func (s *RefereeStore) Delete(ctx context.Context, id string) error {
	return s.c.remove(ctx, s.c.endpoints.Referees, id, nil)
}

// SwimSessionStore implements swimsession.Store over HTTP.
type SwimSessionStore struct{ c *Client }

// GetByID fetches one session.
func (s *SwimSessionStore) GetByID(ctx context.Context, id string) (sessionDomain.SwimSession, error) {
	var w wire.SwimSession
	if err := s.c.get(ctx, s.c.endpoints.SwimSessions, id, &w); err != nil {
		return sessionDomain.SwimSession{}, err
	}
	return w.Domain(), nil
}

// List fetches sessions matching filter.
func (s *SwimSessionStore) List(ctx context.Context, filter sessionStore.ListFilter) ([]sessionDomain.SwimSession, error) {
	q := url.Values{}
	setParam(q, "competitionId", filter.CompetitionID)
	setParam(q, "teamId", filter.TeamID)
	setParam(q, "swimmerId", filter.SwimmerID)
	if filter.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*filter.IsActive))
	}
	var ws []wire.SwimSession
	if err := s.c.list(ctx, s.c.endpoints.SwimSessions, q, &ws); err != nil {
		return nil, err
	}
	out := make([]sessionDomain.SwimSession, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Domain())
	}
	return out, nil
}

// Start creates an active session. The server answers 409 when the team is
// already swimming.
func (s *SwimSessionStore) Start(ctx context.Context, value sessionDomain.SwimSession) error {
	body := wire.StartSession{
		ID:            value.ID,
		CompetitionID: value.CompetitionID,
		SwimmerID:     value.SwimmerID,
		TeamID:        value.TeamID,
		LaneNumber:    value.LaneNumber,
	}
	err := s.c.create(ctx, s.c.endpoints.SwimSessions, body, nil)
	if StatusOf(err) == http.StatusConflict {
		return fmt.Errorf("%w: %w", sessionDomain.ErrTeamAlreadySwimming, err)
	}
	return err
}

// Save pushes the session's active flag. The server stamps the end time.
func (s *SwimSessionStore) Save(ctx context.Context, value sessionDomain.SwimSession) error {
	active := value.IsActive
	return s.c.update(ctx, s.c.endpoints.SwimSessions, value.ID, wire.UpdateSession{IsActive: &active}, nil)
}

// EndActive ends each active session matching filter, one call per session.
func (s *SwimSessionStore) EndActive(ctx context.Context, filter sessionStore.ListFilter, now time.Time) (int, error) {
	filter.IsActive = sessionStore.Active(true)
	active, err := s.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	ended := 0
	for _, sess := range active {
		if err := sess.End(now); err != nil {
			continue
		}
		if err := s.Save(ctx, sess); err != nil {
			return ended, err
		}
		ended++
	}
	return ended, nil
}

// LapCountStore implements lapcount.Store over HTTP.
type LapCountStore struct{ c *Client }

// List fetches laps matching filter.
func (s *LapCountStore) List(ctx context.Context, filter lapStore.ListFilter) ([]lapDomain.LapCount, error) {
	q := url.Values{}
	setParam(q, "competitionId", filter.CompetitionID)
	setParam(q, "teamId", filter.TeamID)
	setParam(q, "swimmerId", filter.SwimmerID)
	var ws []wire.LapCount
	if err := s.c.list(ctx, s.c.endpoints.LapCounts, q, &ws); err != nil {
		return nil, err
	}
	out := make([]lapDomain.LapCount, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Domain())
	}
	return out, nil
}

// LastBySwimmer returns the swimmer's most recent lap, or nil.
func (s *LapCountStore) LastBySwimmer(ctx context.Context, competitionID, swimmerID string) (*lapDomain.LapCount, error) {
	laps, err := s.List(ctx, lapStore.ListFilter{CompetitionID: competitionID, SwimmerID: swimmerID})
	if err != nil {
		return nil, err
	}
	return lapDomain.LatestOf(laps), nil
}

// Append posts a lap. The server assigns the lap number and timestamp and
// enforces the double-count guard.
func (s *LapCountStore) Append(ctx context.Context, req lapStore.AppendRequest) (lapDomain.LapCount, error) {
	body := wire.CountLap{
		ID:            req.Lap.ID,
		CompetitionID: req.Lap.CompetitionID,
		LaneNumber:    req.Lap.LaneNumber,
		TeamID:        req.Lap.TeamID,
		SwimmerID:     req.Lap.SwimmerID,
		RefereeID:     req.Lap.RefereeID,
	}
	var w wire.LapCount
	err := s.c.create(ctx, s.c.endpoints.LapCounts, body, &w)
	switch StatusOf(err) {
	case 0:
		if err != nil {
			return lapDomain.LapCount{}, err
		}
		return w.Domain(), nil
	case http.StatusTooManyRequests:
		return lapDomain.LapCount{}, fmt.Errorf("%w: %w", lapDomain.ErrTooSoon, err)
	case http.StatusUnprocessableEntity:
		return lapDomain.LapCount{}, fmt.Errorf("%w: %w", sessionDomain.ErrNoActiveSession, err)
	}
	return lapDomain.LapCount{}, err
}

func setParam(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
