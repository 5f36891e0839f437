package swimsession_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/adapters/storage/storagetest"
	"swimtrack/internal/adapters/storage/swimsession"
	domain "swimtrack/internal/domain/swimsession"
)

var t0 = time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)

// TestSQLiteStore_StartEndStart covers the one-active-swimmer rule end to end.
func TestSQLiteStore_StartEndStart(t *testing.T) {
	db := storagetest.OpenDB(t)
	f := storagetest.Seed(t, db)
	store := swimsession.NewSQLiteStore(db)
	ctx := context.Background()

	first, _ := domain.New("s1", f.CompetitionID, f.SwimmerIDs[0], f.TeamID, 1, t0)
	if err := store.Start(ctx, first); err != nil {
		t.Fatalf("Start: %v", err)
	}

	second, _ := domain.New("s2", f.CompetitionID, f.SwimmerIDs[1], f.TeamID, 1, t0.Add(time.Minute))
	if err := store.Start(ctx, second); !errors.Is(err, domain.ErrTeamAlreadySwimming) {
		t.Fatalf("second Start error = %v, want ErrTeamAlreadySwimming", err)
	}

	other, _ := domain.New("s3", f.CompetitionID, f.SwimmerIDs[2], f.OtherTeamID, 2, t0)
	if err := store.Start(ctx, other); err != nil {
		t.Fatalf("other team Start: %v", err)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if err := got.End(t0.Add(30 * time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Start(ctx, second); err != nil {
		t.Fatalf("Start after end: %v", err)
	}

	ended, _ := store.GetByID(ctx, "s1")
	if ended.IsActive || ended.EndTime == nil || !ended.EndTime.Equal(t0.Add(30*time.Minute)) {
		t.Errorf("ended session = %+v", ended)
	}
}

func TestSQLiteStore_EndActive(t *testing.T) {
	db := storagetest.OpenDB(t)
	f := storagetest.Seed(t, db)
	store := swimsession.NewSQLiteStore(db)
	ctx := context.Background()

	a, _ := domain.New("s1", f.CompetitionID, f.SwimmerIDs[0], f.TeamID, 1, t0)
	b, _ := domain.New("s2", f.CompetitionID, f.SwimmerIDs[2], f.OtherTeamID, 2, t0)
	store.Start(ctx, a)
	store.Start(ctx, b)

	n, err := store.EndActive(ctx, swimsession.ListFilter{CompetitionID: f.CompetitionID}, t0.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("EndActive = %d, want 2", n)
	}
	active, _ := store.List(ctx, swimsession.ListFilter{CompetitionID: f.CompetitionID, IsActive: swimsession.Active(true)})
	if len(active) != 0 {
		t.Errorf("active after EndActive = %d", len(active))
	}
	all, _ := store.List(ctx, swimsession.ListFilter{CompetitionID: f.CompetitionID})
	if len(all) != 2 {
		t.Errorf("history lost: %d sessions", len(all))
	}
}

func TestSQLiteStore_GetByID_NotFound(t *testing.T) {
	store := swimsession.NewSQLiteStore(storagetest.OpenDB(t))
	if _, err := store.GetByID(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_List_ByActiveState(t *testing.T) {
	db := storagetest.OpenDB(t)
	f := storagetest.Seed(t, db)
	store := swimsession.NewSQLiteStore(db)
	ctx := context.Background()

	a, _ := domain.New("s1", f.CompetitionID, f.SwimmerIDs[0], f.TeamID, 1, t0)
	b, _ := domain.New("s2", f.CompetitionID, f.SwimmerIDs[2], f.OtherTeamID, 2, t0)
	store.Start(ctx, a)
	store.Start(ctx, b)
	if err := b.End(t0.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, b); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		active *bool
		want   []string
	}{
		{"any", nil, []string{"s1", "s2"}},
		{"active", swimsession.Active(true), []string{"s1"}},
		{"ended", swimsession.Active(false), []string{"s2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, swimsession.ListFilter{CompetitionID: f.CompetitionID, IsActive: tt.active})
			if err != nil {
				t.Fatal(err)
			}
			var ids []string
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			slices.Sort(ids)
			if !slices.Equal(ids, tt.want) {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}
