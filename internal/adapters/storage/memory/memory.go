// Package memory is the in-process storage backend. All tables share one
// mutex so multi-table operations are atomic, like a SQLite transaction.
package memory

import (
	"sync"

	accountdomain "swimtrack/internal/domain/account"
	compdomain "swimtrack/internal/domain/competition"
	lapdomain "swimtrack/internal/domain/lapcount"
	refdomain "swimtrack/internal/domain/referee"
	sessiondomain "swimtrack/internal/domain/swimsession"
	swimmerdomain "swimtrack/internal/domain/swimmer"
	teamdomain "swimtrack/internal/domain/team"
)

// DB holds every table in memory.
type DB struct {
	mu           sync.Mutex
	accounts     map[string]accountdomain.Account
	competitions map[string]compdomain.Competition
	teams        map[string]teamdomain.Team
	swimmers     map[string]swimmerdomain.Swimmer
	referees     map[string]refdomain.Referee
	sessions     map[string]sessiondomain.SwimSession
	laps         []lapdomain.LapCount // insertion order
}

// New returns an empty database.
func New() *DB {
	return &DB{
		accounts:     make(map[string]accountdomain.Account),
		competitions: make(map[string]compdomain.Competition),
		teams:        make(map[string]teamdomain.Team),
		swimmers:     make(map[string]swimmerdomain.Swimmer),
		referees:     make(map[string]refdomain.Referee),
		sessions:     make(map[string]sessiondomain.SwimSession),
	}
}

// Accounts returns the account store view.
func (db *DB) Accounts() *AccountStore { return &AccountStore{db: db} }

// Competitions returns the competition store view.
func (db *DB) Competitions() *CompetitionStore { return &CompetitionStore{db: db} }

// Teams returns the team store view.
func (db *DB) Teams() *TeamStore { return &TeamStore{db: db} }

// Swimmers returns the swimmer store view.
func (db *DB) Swimmers() *SwimmerStore { return &SwimmerStore{db: db} }

// Referees returns the referee store view.
func (db *DB) Referees() *RefereeStore { return &RefereeStore{db: db} }

// SwimSessions returns the swim session store view.
func (db *DB) SwimSessions() *SwimSessionStore { return &SwimSessionStore{db: db} }

// LapCounts returns the lap count store view.
func (db *DB) LapCounts() *LapCountStore { return &LapCountStore{db: db} }

// removeLapsWhere drops laps matching pred and returns how many went.
// PRE: db.mu held
func (db *DB) removeLapsWhere(pred func(lapdomain.LapCount) bool) int {
	kept := db.laps[:0]
	removed := 0
	for _, l := range db.laps {
		if pred(l) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	db.laps = kept
	return removed
}
