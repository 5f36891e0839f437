package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/adapters/storage/lapcount"
	"swimtrack/internal/adapters/storage/memory"
	"swimtrack/internal/adapters/storage/swimsession"
	teamstore "swimtrack/internal/adapters/storage/team"
	accountdomain "swimtrack/internal/domain/account"
	compdomain "swimtrack/internal/domain/competition"
	lapdomain "swimtrack/internal/domain/lapcount"
	refdomain "swimtrack/internal/domain/referee"
	sessiondomain "swimtrack/internal/domain/swimsession"
	swimmerdomain "swimtrack/internal/domain/swimmer"
	teamdomain "swimtrack/internal/domain/team"
)

var t0 = time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)

func seed(t *testing.T) *memory.DB {
	t.Helper()
	db := memory.New()
	ctx := context.Background()
	require.NoError(t, db.Accounts().Save(ctx, accountdomain.Account{ID: "u-ref", Login: "ref_11111", Role: accountdomain.RoleReferee}))
	require.NoError(t, db.Accounts().Save(ctx, accountdomain.Account{ID: "u-org", Login: "org@club.nz", Role: accountdomain.RoleOrganizer}))
	require.NoError(t, db.Competitions().Save(ctx, compdomain.Competition{ID: "c1", Name: "C", Status: compdomain.StatusActive}))
	require.NoError(t, db.Teams().Save(ctx, teamdomain.Team{ID: "t1", CompetitionID: "c1", Name: "Sharks", AssignedLane: 2}))
	require.NoError(t, db.Teams().Save(ctx, teamdomain.Team{ID: "t2", CompetitionID: "c1", Name: "Eels", AssignedLane: 1}))
	require.NoError(t, db.Swimmers().Save(ctx, swimmerdomain.Swimmer{ID: "s1", CompetitionID: "c1", TeamID: "t1", Name: "Ana"}))
	require.NoError(t, db.Swimmers().Save(ctx, swimmerdomain.Swimmer{ID: "s2", CompetitionID: "c1", TeamID: "t2", Name: "Ben"}))
	require.NoError(t, db.Referees().Save(ctx, refdomain.Referee{ID: "r1", CompetitionID: "c1", UserID: "u-ref", UniqueID: "ref_11111"}))
	return db
}

func TestSwimSessionStore_OneActivePerTeam(t *testing.T) {
	db := seed(t)
	ctx := context.Background()
	store := db.SwimSessions()

	a, _ := sessiondomain.New("ss1", "c1", "s1", "t1", 2, t0)
	require.NoError(t, store.Start(ctx, a))

	b, _ := sessiondomain.New("ss2", "c1", "s1", "t1", 2, t0.Add(time.Minute))
	assert.ErrorIs(t, store.Start(ctx, b), sessiondomain.ErrTeamAlreadySwimming)

	n, err := store.EndActive(ctx, swimsession.ListFilter{TeamID: "t1"}, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, store.Start(ctx, b))
}

func TestLapCountStore_Append(t *testing.T) {
	db := seed(t)
	ctx := context.Background()
	sess, _ := sessiondomain.New("ss1", "c1", "s1", "t1", 2, t0)
	require.NoError(t, db.SwimSessions().Start(ctx, sess))

	laps := db.LapCounts()
	req := func(id string, ts time.Time) lapcount.AppendRequest {
		return lapcount.AppendRequest{
			Lap:                lapdomain.LapCount{ID: id, CompetitionID: "c1", LaneNumber: 2, TeamID: "t1", SwimmerID: "s1", RefereeID: "r1", Timestamp: ts},
			SessionID:          "ss1",
			MinIntervalSeconds: 15,
		}
	}

	l1, err := laps.Append(ctx, req("l1", t0))
	require.NoError(t, err)
	assert.Equal(t, 1, l1.LapNumber)

	_, err = laps.Append(ctx, req("l2", t0.Add(14*time.Second)))
	assert.ErrorIs(t, err, lapdomain.ErrTooSoon)

	l3, err := laps.Append(ctx, req("l3", t0.Add(15*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, 2, l3.LapNumber)

	got, _ := db.SwimSessions().GetByID(ctx, "ss1")
	assert.Equal(t, 2, got.LapCount)

	last, err := laps.LastBySwimmer(ctx, "c1", "s1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "l3", last.ID)

	_, err = db.SwimSessions().EndActive(ctx, swimsession.ListFilter{CompetitionID: "c1"}, t0.Add(time.Hour))
	require.NoError(t, err)
	_, err = laps.Append(ctx, req("l4", t0.Add(2*time.Hour)))
	assert.ErrorIs(t, err, sessiondomain.ErrNoActiveSession)
}

func TestLapCountStore_Append_Concurrent(t *testing.T) {
	db := seed(t)
	ctx := context.Background()
	sess, _ := sessiondomain.New("ss1", "c1", "s1", "t1", 2, t0)
	require.NoError(t, db.SwimSessions().Start(ctx, sess))

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := db.LapCounts().Append(ctx, lapcount.AppendRequest{
				Lap:                lapdomain.LapCount{ID: string(rune('a' + i)), CompetitionID: "c1", TeamID: "t1", SwimmerID: "s1", LaneNumber: 2, Timestamp: t0},
				SessionID:          "ss1",
				MinIntervalSeconds: 15,
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)
}

func TestRefereeStore_DeleteKeepsLaps(t *testing.T) {
	db := seed(t)
	ctx := context.Background()
	sess, _ := sessiondomain.New("ss1", "c1", "s1", "t1", 2, t0)
	require.NoError(t, db.SwimSessions().Start(ctx, sess))
	_, err := db.LapCounts().Append(ctx, lapcount.AppendRequest{
		Lap:       lapdomain.LapCount{ID: "l1", CompetitionID: "c1", TeamID: "t1", SwimmerID: "s1", LaneNumber: 2, RefereeID: "r1", Timestamp: t0},
		SessionID: "ss1",
	})
	require.NoError(t, err)

	require.NoError(t, db.Referees().Delete(ctx, "r1"))
	laps, _ := db.LapCounts().List(ctx, lapcount.ListFilter{CompetitionID: "c1"})
	require.Len(t, laps, 1)
	assert.Empty(t, laps[0].RefereeID)
}

func TestCompetitionStore_DeleteCascade(t *testing.T) {
	db := seed(t)
	ctx := context.Background()
	sess, _ := sessiondomain.New("ss1", "c1", "s1", "t1", 2, t0)
	require.NoError(t, db.SwimSessions().Start(ctx, sess))

	counts, err := db.Competitions().Delete(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Teams)
	assert.Equal(t, 2, counts.Swimmers)
	assert.Equal(t, 1, counts.Referees)
	assert.Equal(t, 1, counts.SwimSessions)

	_, err = db.Accounts().GetByID(ctx, "u-ref")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "referee account should be gone")
	_, err = db.Accounts().GetByID(ctx, "u-org")
	assert.NoError(t, err)

	_, err = db.Competitions().Delete(ctx, "c1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTeamStore_ListOrder(t *testing.T) {
	db := seed(t)
	teams, err := db.Teams().List(context.Background(), teamstore.ListFilter{CompetitionID: "c1"})
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "t2", teams[0].ID, "lane 1 first")
}

func TestAccountStore_DuplicateLogin(t *testing.T) {
	db := seed(t)
	err := db.Accounts().Save(context.Background(), accountdomain.Account{ID: "u-new", Login: "org@club.nz", Role: accountdomain.RoleOrganizer})
	assert.ErrorIs(t, err, accountdomain.ErrDuplicateLogin)
}
