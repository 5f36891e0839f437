package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/domain/account"
	"swimtrack/internal/domain/referee"
)

func refereeDeps(f fixture, logins ...string) RefereeDeps {
	deps := RefereeDeps{
		CompetitionStore: f.db.Competitions(),
		RefereeStore:     f.db.Referees(),
		AccountStore:     f.db.Accounts(),
		GenerateID:       f.ids,
		Now:              fixedNow,
		GeneratePassword: func() (string, error) { return "SwiftDolphin42", nil },
	}
	if len(logins) > 0 {
		deps.GenerateLoginID = func(taken map[string]bool) (string, error) {
			for _, l := range logins {
				if !taken[l] {
					return l, nil
				}
			}
			return "", referee.ErrNoFreeLoginID
		}
	}
	return deps
}

// --- ExecuteCreateReferee tests ---

func TestExecuteCreateReferee_CreatesLoginAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := ExecuteCreateReferee(ctx, CreateRefereeInput{Actor: organizer, CompetitionID: "comp-1", Email: " lane@example.com "}, refereeDeps(f))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Password != "SwiftDolphin42" {
		t.Errorf("Password = %q", got.Password)
	}
	if !strings.HasPrefix(got.Referee.UniqueID, referee.LoginIDPrefix) || len(got.Referee.UniqueID) != len("ref_12345") {
		t.Errorf("UniqueID = %q", got.Referee.UniqueID)
	}
	if got.Referee.Email != "lane@example.com" {
		t.Errorf("Email = %q", got.Referee.Email)
	}

	acct, err := f.db.Accounts().GetByLogin(ctx, got.Referee.UniqueID)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if acct.ID != got.Referee.UserID || acct.Role != account.RoleReferee {
		t.Errorf("account = %+v", acct)
	}
	if err := acct.CanLogin("SwiftDolphin42"); err != nil {
		t.Errorf("referee cannot log in: %v", err)
	}
}

func TestExecuteCreateReferee_SkipsTakenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deps := refereeDeps(f, "ref_11111", "ref_22222")

	first, err := ExecuteCreateReferee(ctx, CreateRefereeInput{Actor: organizer, CompetitionID: "comp-1"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ExecuteCreateReferee(ctx, CreateRefereeInput{Actor: organizer, CompetitionID: "comp-1"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if first.Referee.UniqueID != "ref_11111" || second.Referee.UniqueID != "ref_22222" {
		t.Errorf("logins = %s, %s", first.Referee.UniqueID, second.Referee.UniqueID)
	}

	_, err = ExecuteCreateReferee(ctx, CreateRefereeInput{Actor: organizer, CompetitionID: "comp-1"}, deps)
	if !errors.Is(err, referee.ErrNoFreeLoginID) {
		t.Errorf("exhausted err = %v, want ErrNoFreeLoginID", err)
	}
}

func TestExecuteCreateReferee_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ve *ValidationError
	if _, err := ExecuteCreateReferee(ctx, CreateRefereeInput{Actor: organizer}, refereeDeps(f)); !errors.As(err, &ve) {
		t.Errorf("missing competition err = %v", err)
	}
	if _, err := ExecuteCreateReferee(ctx, CreateRefereeInput{Actor: organizer, CompetitionID: "ghost"}, refereeDeps(f)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown competition err = %v", err)
	}
	if _, err := ExecuteCreateReferee(ctx, CreateRefereeInput{Actor: stranger, CompetitionID: "comp-1"}, refereeDeps(f)); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger err = %v", err)
	}
}

// --- ExecuteDeleteReferee / ExecuteResetRefereePassword tests ---

func TestExecuteDeleteReferee_KeepsLaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := ExecuteCreateReferee(ctx, CreateRefereeInput{Actor: organizer, CompetitionID: "comp-1"}, refereeDeps(f))
	if err != nil {
		t.Fatal(err)
	}
	register(t, f, "sw-1", "team-1", 1, fixedNow)
	in := countInput("sw-1", "team-1", 1)
	in.RefereeID = created.Referee.ID
	if _, err := ExecuteCountLap(ctx, in, f.countDeps(fixedNow)); err != nil {
		t.Fatal(err)
	}

	if err := ExecuteDeleteReferee(ctx, RefereeRef{Actor: organizer, ID: created.Referee.ID}, refereeDeps(f)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.db.Accounts().GetByID(ctx, created.Referee.UserID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("account still present: %v", err)
	}
	last, err := f.db.LapCounts().LastBySwimmer(ctx, "comp-1", "sw-1")
	if err != nil || last == nil {
		t.Fatalf("lap gone: %v", err)
	}
	if last.RefereeID != "" {
		t.Errorf("RefereeID = %q, want cleared", last.RefereeID)
	}
}

func TestExecuteResetRefereePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := ExecuteCreateReferee(ctx, CreateRefereeInput{Actor: organizer, CompetitionID: "comp-1"}, refereeDeps(f))
	if err != nil {
		t.Fatal(err)
	}

	deps := refereeDeps(f)
	deps.GeneratePassword = func() (string, error) { return "CalmOtter17", nil }
	pw, err := ExecuteResetRefereePassword(ctx, RefereeRef{Actor: organizer, ID: created.Referee.ID}, deps)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	acct, _ := f.db.Accounts().GetByID(ctx, created.Referee.UserID)
	if err := acct.CanLogin(pw); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if err := acct.CanLogin("SwiftDolphin42"); err == nil {
		t.Error("old password still accepted")
	}
}
