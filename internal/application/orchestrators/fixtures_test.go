package orchestrators

import (
	"context"
	"fmt"
	"testing"
	"time"

	"swimtrack/internal/adapters/storage/memory"
	"swimtrack/internal/domain/account"
	"swimtrack/internal/domain/competition"
	"swimtrack/internal/domain/swimmer"
	"swimtrack/internal/domain/team"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// seqID returns an ID generator yielding prefix-1, prefix-2, ...
func seqID(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// clock is a settable Now for tests that need time to move.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var (
	organizer = Actor{AccountID: "org-1", Role: account.RoleOrganizer}
	stranger  = Actor{AccountID: "org-2", Role: account.RoleOrganizer}
	admin     = Actor{AccountID: "admin-1", Role: account.RoleAdmin}
)

// fixture seeds one active competition with two teams on lanes 1 and 2 and
// three swimmers, two of them on team-1.
type fixture struct {
	db   *memory.DB
	comp competition.Competition
	ids  func() string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := memory.New()

	for _, a := range []account.Account{
		{ID: "admin-1", Login: "admin@example.com", Role: account.RoleAdmin, CreatedAt: fixedTime},
		{ID: "org-1", Login: "org@example.com", Name: "Olga", Role: account.RoleOrganizer, CreatedAt: fixedTime},
		{ID: "org-2", Login: "other@example.com", Role: account.RoleOrganizer, CreatedAt: fixedTime},
	} {
		if err := db.Accounts().Save(ctx, a); err != nil {
			t.Fatalf("seed account: %v", err)
		}
	}

	start := fixedTime.Add(-time.Hour)
	comp := competition.Competition{
		ID:                 "comp-1",
		Name:               "Harbour 24",
		Date:               "2026-03-01",
		StartTime:          "11:00",
		Location:           "Harbour Pool",
		NumberOfLanes:      4,
		LaneLength:         25,
		DoubleCountTimeout: 15,
		OrganizerID:        "org-1",
		Status:             competition.StatusActive,
		ActualStartTime:    &start,
		CreatedAt:          fixedTime,
	}
	if err := db.Competitions().Save(ctx, comp); err != nil {
		t.Fatalf("seed competition: %v", err)
	}
	for _, tm := range []team.Team{
		{ID: "team-1", Name: "Sharks", Color: "red", CompetitionID: "comp-1", AssignedLane: 1, CreatedAt: fixedTime},
		{ID: "team-2", Name: "Otters", Color: "blue", CompetitionID: "comp-1", AssignedLane: 2, CreatedAt: fixedTime},
	} {
		if err := db.Teams().Save(ctx, tm); err != nil {
			t.Fatalf("seed team: %v", err)
		}
	}
	for _, s := range []swimmer.Swimmer{
		{ID: "sw-1", Name: "Ana", TeamID: "team-1", CompetitionID: "comp-1", CreatedAt: fixedTime},
		{ID: "sw-2", Name: "Ben", TeamID: "team-1", CompetitionID: "comp-1", CreatedAt: fixedTime},
		{ID: "sw-3", Name: "Cas", TeamID: "team-2", CompetitionID: "comp-1", CreatedAt: fixedTime},
	} {
		if err := db.Swimmers().Save(ctx, s); err != nil {
			t.Fatalf("seed swimmer: %v", err)
		}
	}
	return fixture{db: db, comp: comp, ids: seqID("id")}
}

func (f fixture) setStatus(t *testing.T, status string) {
	t.Helper()
	c := f.comp
	c.Status = status
	if err := f.db.Competitions().Save(context.Background(), c); err != nil {
		t.Fatalf("set status: %v", err)
	}
}

func (f fixture) registerDeps(now func() time.Time) RegisterSwimmerDeps {
	return RegisterSwimmerDeps{
		CompetitionStore: f.db.Competitions(),
		TeamStore:        f.db.Teams(),
		SwimmerStore:     f.db.Swimmers(),
		SessionStore:     f.db.SwimSessions(),
		GenerateID:       f.ids,
		Now:              now,
	}
}

func (f fixture) countDeps(now func() time.Time) CountLapDeps {
	return CountLapDeps{
		CompetitionStore: f.db.Competitions(),
		SessionStore:     f.db.SwimSessions(),
		LapStore:         f.db.LapCounts(),
		GenerateID:       f.ids,
		Now:              now,
	}
}
