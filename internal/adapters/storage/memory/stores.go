package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"swimtrack/internal/adapters/storage"
	accountstore "swimtrack/internal/adapters/storage/account"
	compstore "swimtrack/internal/adapters/storage/competition"
	lapstore "swimtrack/internal/adapters/storage/lapcount"
	refstore "swimtrack/internal/adapters/storage/referee"
	sessionstore "swimtrack/internal/adapters/storage/swimsession"
	swimmerstore "swimtrack/internal/adapters/storage/swimmer"
	teamstore "swimtrack/internal/adapters/storage/team"
	accountdomain "swimtrack/internal/domain/account"
	compdomain "swimtrack/internal/domain/competition"
	lapdomain "swimtrack/internal/domain/lapcount"
	refdomain "swimtrack/internal/domain/referee"
	sessiondomain "swimtrack/internal/domain/swimsession"
	swimmerdomain "swimtrack/internal/domain/swimmer"
	teamdomain "swimtrack/internal/domain/team"
)

// Compile-time checks.
var (
	_ accountstore.Store = (*AccountStore)(nil)
	_ compstore.Store    = (*CompetitionStore)(nil)
	_ teamstore.Store    = (*TeamStore)(nil)
	_ swimmerstore.Store = (*SwimmerStore)(nil)
	_ refstore.Store     = (*RefereeStore)(nil)
	_ sessionstore.Store = (*SwimSessionStore)(nil)
	_ lapstore.Store     = (*LapCountStore)(nil)
)

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
}

// AccountStore implements account.Store in memory.
type AccountStore struct{ db *DB }

func (s *AccountStore) GetByID(_ context.Context, id string) (accountdomain.Account, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.accounts[id]
	if !ok {
		return accountdomain.Account{}, notFound("account", id)
	}
	return a, nil
}

func (s *AccountStore) GetByLogin(_ context.Context, login string) (accountdomain.Account, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, a := range s.db.accounts {
		if a.Login == login {
			return a, nil
		}
	}
	return accountdomain.Account{}, notFound("account", login)
}

func (s *AccountStore) Save(_ context.Context, value accountdomain.Account) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, a := range s.db.accounts {
		if id != value.ID && a.Login == value.Login {
			return accountdomain.ErrDuplicateLogin
		}
	}
	s.db.accounts[value.ID] = value
	return nil
}

func (s *AccountStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.accounts, id)
	return nil
}

func (s *AccountStore) List(_ context.Context, filter accountstore.ListFilter) ([]accountdomain.Account, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []accountdomain.Account
	for _, a := range s.db.accounts {
		if filter.Role == "" || a.Role == filter.Role {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *AccountStore) Count(_ context.Context) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.accounts), nil
}

// CompetitionStore implements competition.Store in memory.
type CompetitionStore struct{ db *DB }

func (s *CompetitionStore) GetByID(_ context.Context, id string) (compdomain.Competition, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.competitions[id]
	if !ok {
		return compdomain.Competition{}, notFound("competition", id)
	}
	return c, nil
}

func (s *CompetitionStore) List(_ context.Context, filter compstore.ListFilter) ([]compdomain.Competition, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []compdomain.Competition
	for _, c := range s.db.competitions {
		if filter.OrganizerID != "" && c.OrganizerID != filter.OrganizerID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *CompetitionStore) Save(_ context.Context, value compdomain.Competition) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if old, ok := s.db.competitions[value.ID]; ok {
		value.CreatedAt = old.CreatedAt
	}
	s.db.competitions[value.ID] = value
	return nil
}

func (s *CompetitionStore) Delete(_ context.Context, id string) (compstore.DeleteCounts, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var counts compstore.DeleteCounts
	if _, ok := s.db.competitions[id]; !ok {
		return counts, notFound("competition", id)
	}
	counts.LapCounts = s.db.removeLapsWhere(func(l lapdomain.LapCount) bool { return l.CompetitionID == id })
	for k, v := range s.db.sessions {
		if v.CompetitionID == id {
			delete(s.db.sessions, k)
			counts.SwimSessions++
		}
	}
	for k, v := range s.db.swimmers {
		if v.CompetitionID == id {
			delete(s.db.swimmers, k)
			counts.Swimmers++
		}
	}
	for k, v := range s.db.referees {
		if v.CompetitionID == id {
			delete(s.db.accounts, v.UserID)
			delete(s.db.referees, k)
			counts.Referees++
		}
	}
	for k, v := range s.db.teams {
		if v.CompetitionID == id {
			delete(s.db.teams, k)
			counts.Teams++
		}
	}
	delete(s.db.competitions, id)
	return counts, nil
}

// TeamStore implements team.Store in memory.
type TeamStore struct{ db *DB }

func (s *TeamStore) GetByID(_ context.Context, id string) (teamdomain.Team, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.teams[id]
	if !ok {
		return teamdomain.Team{}, notFound("team", id)
	}
	return t, nil
}

func (s *TeamStore) List(_ context.Context, filter teamstore.ListFilter) ([]teamdomain.Team, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []teamdomain.Team
	for _, t := range s.db.teams {
		if filter.CompetitionID != "" && t.CompetitionID != filter.CompetitionID {
			continue
		}
		if filter.LaneNumber > 0 && t.AssignedLane != filter.LaneNumber {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AssignedLane != out[j].AssignedLane {
			return out[i].AssignedLane < out[j].AssignedLane
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *TeamStore) Save(_ context.Context, value teamdomain.Team) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.teams[value.ID] = value
	return nil
}

func (s *TeamStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.teams[id]; !ok {
		return notFound("team", id)
	}
	s.db.removeLapsWhere(func(l lapdomain.LapCount) bool { return l.TeamID == id })
	for k, v := range s.db.sessions {
		if v.TeamID == id {
			delete(s.db.sessions, k)
		}
	}
	for k, v := range s.db.swimmers {
		if v.TeamID == id {
			delete(s.db.swimmers, k)
		}
	}
	delete(s.db.teams, id)
	return nil
}

// SwimmerStore implements swimmer.Store in memory.
type SwimmerStore struct{ db *DB }

func (s *SwimmerStore) GetByID(_ context.Context, id string) (swimmerdomain.Swimmer, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sw, ok := s.db.swimmers[id]
	if !ok {
		return swimmerdomain.Swimmer{}, notFound("swimmer", id)
	}
	return sw, nil
}

func (s *SwimmerStore) List(_ context.Context, filter swimmerstore.ListFilter) ([]swimmerdomain.Swimmer, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []swimmerdomain.Swimmer
	for _, sw := range s.db.swimmers {
		if filter.CompetitionID != "" && sw.CompetitionID != filter.CompetitionID {
			continue
		}
		if filter.TeamID != "" && sw.TeamID != filter.TeamID {
			continue
		}
		out = append(out, sw)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *SwimmerStore) Save(_ context.Context, value swimmerdomain.Swimmer) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.swimmers[value.ID] = value
	return nil
}

func (s *SwimmerStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.swimmers[id]; !ok {
		return notFound("swimmer", id)
	}
	s.db.removeLapsWhere(func(l lapdomain.LapCount) bool { return l.SwimmerID == id })
	for k, v := range s.db.sessions {
		if v.SwimmerID == id {
			delete(s.db.sessions, k)
		}
	}
	delete(s.db.swimmers, id)
	return nil
}

// RefereeStore implements referee.Store in memory.
type RefereeStore struct{ db *DB }

func (s *RefereeStore) GetByID(_ context.Context, id string) (refdomain.Referee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.referees[id]
	if !ok {
		return refdomain.Referee{}, notFound("referee", id)
	}
	return r, nil
}

func (s *RefereeStore) List(_ context.Context, filter refstore.ListFilter) ([]refdomain.Referee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []refdomain.Referee
	for _, r := range s.db.referees {
		if filter.CompetitionID != "" && r.CompetitionID != filter.CompetitionID {
			continue
		}
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueID < out[j].UniqueID })
	return out, nil
}

func (s *RefereeStore) Save(_ context.Context, value refdomain.Referee) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, r := range s.db.referees {
		if id != value.ID && r.UniqueID == value.UniqueID {
			return fmt.Errorf("referee login %s already in use", value.UniqueID)
		}
	}
	s.db.referees[value.ID] = value
	return nil
}

func (s *RefereeStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.referees[id]; !ok {
		return notFound("referee", id)
	}
	for i := range s.db.laps {
		if s.db.laps[i].RefereeID == id {
			s.db.laps[i].RefereeID = ""
		}
	}
	delete(s.db.referees, id)
	return nil
}

// SwimSessionStore implements swimsession.Store in memory.
type SwimSessionStore struct{ db *DB }

func (s *SwimSessionStore) GetByID(_ context.Context, id string) (sessiondomain.SwimSession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ss, ok := s.db.sessions[id]
	if !ok {
		return sessiondomain.SwimSession{}, notFound("swim session", id)
	}
	return ss, nil
}

func sessionMatches(ss sessiondomain.SwimSession, f sessionstore.ListFilter) bool {
	if f.CompetitionID != "" && ss.CompetitionID != f.CompetitionID {
		return false
	}
	if f.TeamID != "" && ss.TeamID != f.TeamID {
		return false
	}
	if f.SwimmerID != "" && ss.SwimmerID != f.SwimmerID {
		return false
	}
	return f.IsActive == nil || ss.IsActive == *f.IsActive
}

func (s *SwimSessionStore) List(_ context.Context, filter sessionstore.ListFilter) ([]sessiondomain.SwimSession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []sessiondomain.SwimSession
	for _, ss := range s.db.sessions {
		if sessionMatches(ss, filter) {
			out = append(out, ss)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (s *SwimSessionStore) Start(_ context.Context, value sessiondomain.SwimSession) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, ss := range s.db.sessions {
		if ss.IsActive && ss.CompetitionID == value.CompetitionID && ss.TeamID == value.TeamID {
			return sessiondomain.ErrTeamAlreadySwimming
		}
	}
	value.IsActive = true
	s.db.sessions[value.ID] = value
	return nil
}

func (s *SwimSessionStore) Save(_ context.Context, value sessiondomain.SwimSession) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.sessions[value.ID]; !ok {
		return notFound("swim session", value.ID)
	}
	if value.IsActive {
		for id, ss := range s.db.sessions {
			if id != value.ID && ss.IsActive && ss.CompetitionID == value.CompetitionID && ss.TeamID == value.TeamID {
				return sessiondomain.ErrTeamAlreadySwimming
			}
		}
	}
	s.db.sessions[value.ID] = value
	return nil
}

func (s *SwimSessionStore) EndActive(_ context.Context, filter sessionstore.ListFilter, now time.Time) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	filter.IsActive = sessionstore.Active(true)
	n := 0
	for id, ss := range s.db.sessions {
		if !sessionMatches(ss, filter) {
			continue
		}
		if err := ss.End(now); err != nil {
			return n, err
		}
		s.db.sessions[id] = ss
		n++
	}
	return n, nil
}

// LapCountStore implements lapcount.Store in memory.
type LapCountStore struct{ db *DB }

func (s *LapCountStore) List(_ context.Context, filter lapstore.ListFilter) ([]lapdomain.LapCount, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []lapdomain.LapCount
	for _, l := range s.db.laps {
		if filter.CompetitionID != "" && l.CompetitionID != filter.CompetitionID {
			continue
		}
		if filter.TeamID != "" && l.TeamID != filter.TeamID {
			continue
		}
		if filter.SwimmerID != "" && l.SwimmerID != filter.SwimmerID {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *LapCountStore) LastBySwimmer(_ context.Context, competitionID, swimmerID string) (*lapdomain.LapCount, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.lastBySwimmer(competitionID, swimmerID), nil
}

// PRE: db.mu held
func (s *LapCountStore) lastBySwimmer(competitionID, swimmerID string) *lapdomain.LapCount {
	var mine []lapdomain.LapCount
	for _, l := range s.db.laps {
		if l.CompetitionID == competitionID && l.SwimmerID == swimmerID {
			mine = append(mine, l)
		}
	}
	last := lapdomain.LatestOf(mine)
	if last == nil {
		return nil
	}
	cp := *last
	return &cp
}

func (s *LapCountStore) Append(_ context.Context, req lapstore.AppendRequest) (lapdomain.LapCount, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	sess, ok := s.db.sessions[req.SessionID]
	if !ok || !sess.IsActive {
		return lapdomain.LapCount{}, sessiondomain.ErrNoActiveSession
	}
	lap := req.Lap
	last := s.lastBySwimmer(lap.CompetitionID, lap.SwimmerID)
	if !lapdomain.CanCountLap(last, lap.Timestamp, req.MinIntervalSeconds) {
		return lapdomain.LapCount{}, lapdomain.ErrTooSoon
	}

	teamLaps := 0
	for _, l := range s.db.laps {
		if l.CompetitionID == lap.CompetitionID && l.TeamID == lap.TeamID {
			teamLaps++
		}
	}
	lap.LapNumber = teamLaps + 1
	s.db.laps = append(s.db.laps, lap)

	sess.LapCount++
	s.db.sessions[sess.ID] = sess
	return lap, nil
}

