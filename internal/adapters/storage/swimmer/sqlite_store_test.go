package swimmer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/adapters/storage/storagetest"
	sessionstore "swimtrack/internal/adapters/storage/swimsession"
	"swimtrack/internal/adapters/storage/swimmer"
	domain "swimtrack/internal/domain/swimmer"
	sessiondomain "swimtrack/internal/domain/swimsession"
)

var t0 = time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)

// TestSQLiteStore_GuardianFields round-trips the under-12 flags, which are
// stored as 0/1.
func TestSQLiteStore_GuardianFields(t *testing.T) {
	db := storagetest.OpenDB(t)
	f := storagetest.Seed(t, db)
	store := swimmer.NewSQLiteStore(db)
	ctx := context.Background()

	kid := domain.Swimmer{
		ID: "sw-9", Name: "Dan", TeamID: f.TeamID, CompetitionID: f.CompetitionID,
		IsUnder12: true, ParentName: "Eve", ParentContact: "021 555 0101", ParentPresent: true, CreatedAt: t0,
	}
	if err := store.Save(ctx, kid); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.GetByID(ctx, "sw-9")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(kid, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	kid.ParentPresent = false
	kid.TeamID = f.OtherTeamID
	if err := store.Save(ctx, kid); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.GetByID(ctx, "sw-9")
	if got.ParentPresent || got.TeamID != f.OtherTeamID {
		t.Errorf("after update = %+v", got)
	}
}

func TestSQLiteStore_List(t *testing.T) {
	db := storagetest.OpenDB(t)
	f := storagetest.Seed(t, db)
	store := swimmer.NewSQLiteStore(db)
	ctx := context.Background()

	all, err := store.List(ctx, swimmer.ListFilter{CompetitionID: f.CompetitionID})
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range all {
		names = append(names, s.Name)
	}
	if len(names) != 3 || names[0] != "Ana" || names[1] != "Ben" || names[2] != "Cat" {
		t.Errorf("names = %v, want [Ana Ben Cat]", names)
	}

	team, _ := store.List(ctx, swimmer.ListFilter{TeamID: f.OtherTeamID})
	if len(team) != 1 || team[0].ID != f.SwimmerIDs[2] {
		t.Errorf("List by team = %+v", team)
	}
}

func TestSQLiteStore_Delete_RemovesSessions(t *testing.T) {
	db := storagetest.OpenDB(t)
	f := storagetest.Seed(t, db)
	ctx := context.Background()

	sessions := sessionstore.NewSQLiteStore(db)
	sess, _ := sessiondomain.New("sess-1", f.CompetitionID, f.SwimmerIDs[0], f.TeamID, 1, t0)
	if err := sessions.Start(ctx, sess); err != nil {
		t.Fatal(err)
	}

	store := swimmer.NewSQLiteStore(db)
	if err := store.Delete(ctx, f.SwimmerIDs[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := sessions.GetByID(ctx, "sess-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("session after Delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, f.SwimmerIDs[0]); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}
