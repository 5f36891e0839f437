package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/adapters/storage/account"
	"swimtrack/internal/adapters/storage/storagetest"
	domain "swimtrack/internal/domain/account"
)

var t0 = time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)

func TestSQLiteStore_SaveAndGetByLogin(t *testing.T) {
	store := account.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()

	a := domain.Account{ID: "acc-1", Login: "olga@example.com", Name: "Olga", PasswordHash: "hash", Role: domain.RoleOrganizer, CreatedAt: t0}
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.GetByLogin(ctx, "olga@example.com")
	if err != nil {
		t.Fatalf("GetByLogin: %v", err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	a.Disabled = true
	a.PasswordHash = "new-hash"
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.GetByID(ctx, "acc-1")
	if !got.Disabled || got.PasswordHash != "new-hash" {
		t.Errorf("after update = %+v", got)
	}

	if _, err := store.GetByLogin(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown login = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_DuplicateLogin(t *testing.T) {
	store := account.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()

	if err := store.Save(ctx, domain.Account{ID: "acc-1", Login: "olga@example.com", Role: domain.RoleOrganizer, CreatedAt: t0}); err != nil {
		t.Fatal(err)
	}
	err := store.Save(ctx, domain.Account{ID: "acc-2", Login: "olga@example.com", Role: domain.RoleOrganizer, CreatedAt: t0})
	if !errors.Is(err, domain.ErrDuplicateLogin) {
		t.Errorf("err = %v, want ErrDuplicateLogin", err)
	}
}

func TestSQLiteStore_ListPagesNewestFirst(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.Seed(t, db) // user-org and user-ref-1, both at 12:00
	store := account.NewSQLiteStore(db)
	ctx := context.Background()

	for i, login := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		acc := domain.Account{ID: login, Login: login, Role: domain.RoleOrganizer, CreatedAt: t0.Add(time.Duration(i) * time.Minute)}
		if err := store.Save(ctx, acc); err != nil {
			t.Fatal(err)
		}
	}

	n, err := store.Count(ctx)
	if err != nil || n != 5 {
		t.Fatalf("Count = %d, %v; want 5", n, err)
	}

	page, err := store.List(ctx, account.ListFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Login != "b@example.com" || page[1].Login != "a@example.com" {
		t.Errorf("page = %+v", page)
	}

	refs, _ := store.List(ctx, account.ListFilter{Role: domain.RoleReferee})
	if len(refs) != 1 || refs[0].Login != "ref_12345" {
		t.Errorf("referees = %+v", refs)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := account.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	store.Save(ctx, domain.Account{ID: "acc-1", Login: "olga@example.com", Role: domain.RoleOrganizer, CreatedAt: t0})

	if err := store.Delete(ctx, "acc-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetByID(ctx, "acc-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID after Delete = %v, want ErrNotFound", err)
	}
}
