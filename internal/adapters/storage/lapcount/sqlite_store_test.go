package lapcount_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"swimtrack/internal/adapters/storage/lapcount"
	"swimtrack/internal/adapters/storage/storagetest"
	sessionstore "swimtrack/internal/adapters/storage/swimsession"
	domain "swimtrack/internal/domain/lapcount"
	sessiondomain "swimtrack/internal/domain/swimsession"
)

var t0 = time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*lapcount.SQLiteStore, *sessionstore.SQLiteStore, storagetest.Fixture) {
	t.Helper()
	db := storagetest.OpenDB(t)
	f := storagetest.Seed(t, db)
	sessions := sessionstore.NewSQLiteStore(db)
	s, err := sessiondomain.New("sess-1", f.CompetitionID, f.SwimmerIDs[0], f.TeamID, 1, t0)
	if err != nil {
		t.Fatal(err)
	}
	if err := sessions.Start(context.Background(), s); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return lapcount.NewSQLiteStore(db), sessions, f
}

func lapAt(id string, f storagetest.Fixture, swimmer int, ts time.Time) lapcount.AppendRequest {
	return lapcount.AppendRequest{
		Lap: domain.LapCount{
			ID:            id,
			CompetitionID: f.CompetitionID,
			LaneNumber:    1,
			TeamID:        f.TeamID,
			SwimmerID:     f.SwimmerIDs[swimmer],
			RefereeID:     f.RefereeID,
			Timestamp:     ts,
		},
		SessionID:          "sess-1",
		MinIntervalSeconds: 15,
	}
}

// TestSQLiteStore_Append_Guard checks the boundary is accepted and earlier laps rejected.
func TestSQLiteStore_Append_Guard(t *testing.T) {
	store, sessions, f := setup(t)
	ctx := context.Background()

	first, err := store.Append(ctx, lapAt("l1", f, 0, t0))
	if err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if first.LapNumber != 1 {
		t.Errorf("LapNumber = %d, want 1", first.LapNumber)
	}

	_, err = store.Append(ctx, lapAt("l2", f, 0, t0.Add(15*time.Second-time.Millisecond)))
	if !errors.Is(err, domain.ErrTooSoon) {
		t.Fatalf("early Append error = %v, want ErrTooSoon", err)
	}

	second, err := store.Append(ctx, lapAt("l3", f, 0, t0.Add(15*time.Second)))
	if err != nil {
		t.Fatalf("boundary Append: %v", err)
	}
	if second.LapNumber != 2 {
		t.Errorf("LapNumber = %d, want 2", second.LapNumber)
	}

	sess, err := sessions.GetByID(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.LapCount != 2 {
		t.Errorf("session LapCount = %d, want 2", sess.LapCount)
	}

	last, err := store.LastBySwimmer(ctx, f.CompetitionID, f.SwimmerIDs[0])
	if err != nil || last == nil || last.ID != "l3" {
		t.Errorf("LastBySwimmer = %+v, %v", last, err)
	}
}

// TestSQLiteStore_Append_NoActiveSession checks ended sessions refuse laps.
func TestSQLiteStore_Append_NoActiveSession(t *testing.T) {
	store, sessions, f := setup(t)
	ctx := context.Background()

	if _, err := sessions.EndActive(ctx, sessionstore.ListFilter{TeamID: f.TeamID}, t0.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	_, err := store.Append(ctx, lapAt("l1", f, 0, t0.Add(2*time.Minute)))
	if !errors.Is(err, sessiondomain.ErrNoActiveSession) {
		t.Errorf("Append error = %v, want ErrNoActiveSession", err)
	}
}

// TestSQLiteStore_Append_GuardIsPerSwimmer checks a teammate's lap does not block.
func TestSQLiteStore_Append_GuardIsPerSwimmer(t *testing.T) {
	store, _, f := setup(t)
	ctx := context.Background()

	if _, err := store.Append(ctx, lapAt("l1", f, 0, t0)); err != nil {
		t.Fatal(err)
	}
	other := lapAt("l2", f, 1, t0.Add(time.Second))
	lap, err := store.Append(ctx, other)
	if err != nil {
		t.Fatalf("teammate Append: %v", err)
	}
	if lap.LapNumber != 2 {
		t.Errorf("LapNumber = %d, want 2 (team count)", lap.LapNumber)
	}
}

// TestSQLiteStore_Append_Concurrent fires the same tap from several goroutines.
func TestSQLiteStore_Append_Concurrent(t *testing.T) {
	store, _, f := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := lapAt("c"+string(rune('a'+i)), f, 0, t0.Add(time.Duration(i)*time.Millisecond))
			if _, err := store.Append(ctx, req); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if accepted != 1 {
		t.Errorf("accepted = %d, want exactly 1", accepted)
	}
	laps, err := store.List(ctx, lapcount.ListFilter{CompetitionID: f.CompetitionID})
	if err != nil {
		t.Fatal(err)
	}
	if len(laps) != 1 {
		t.Errorf("stored laps = %d, want 1", len(laps))
	}
}

func TestSQLiteStore_List_OrderAndFilter(t *testing.T) {
	store, _, f := setup(t)
	ctx := context.Background()

	store.Append(ctx, lapAt("l1", f, 0, t0))
	store.Append(ctx, lapAt("l2", f, 1, t0.Add(time.Second)))
	store.Append(ctx, lapAt("l3", f, 0, t0.Add(time.Minute)))

	laps, err := store.List(ctx, lapcount.ListFilter{CompetitionID: f.CompetitionID, SwimmerID: f.SwimmerIDs[0]})
	if err != nil {
		t.Fatal(err)
	}
	if len(laps) != 2 || laps[0].ID != "l1" || laps[1].ID != "l3" {
		t.Errorf("List = %+v", laps)
	}
	if !laps[1].Timestamp.Equal(t0.Add(time.Minute)) {
		t.Errorf("timestamp round trip = %v", laps[1].Timestamp)
	}
	if laps[0].RefereeID != f.RefereeID {
		t.Errorf("RefereeID = %q", laps[0].RefereeID)
	}

	none, err := store.LastBySwimmer(ctx, f.CompetitionID, f.SwimmerIDs[2])
	if err != nil || none != nil {
		t.Errorf("LastBySwimmer(no laps) = %+v, %v", none, err)
	}
}
