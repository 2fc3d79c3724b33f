package store_test

import (
	"context"
	"testing"

	"carousel/internal/store"
	"carousel/internal/testsupport"
)

func TestOpenCreatesSchemaAndRoundTripsAccounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	account, err := st.CreateAccount(ctx, &store.Account{
		Username:    "studio",
		IGUserID:    "17841400000000000",
		AccessToken: "secret",
		Email:       "studio@example.com",
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.ID == 0 {
		t.Fatal("expected account ID to be assigned")
	}
	if !account.HasCredentials() {
		t.Fatal("expected account to have credentials")
	}

	fetched, err := st.GetAccountByUsername(ctx, "studio")
	if err != nil {
		t.Fatalf("GetAccountByUsername failed: %v", err)
	}
	if fetched == nil || fetched.ID != account.ID {
		t.Fatalf("unexpected fetched account: %#v", fetched)
	}

	fetched.AccessToken = ""
	if fetched.HasCredentials() {
		t.Fatal("expected missing token to fail credentials check")
	}
}

func TestCreateAccountRejectsDuplicateUsername(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	testsupport.NewAccount(t, st, "studio")
	if _, err := st.CreateAccount(context.Background(), &store.Account{Username: "studio"}); err == nil {
		t.Fatal("expected duplicate username to fail")
	}
}

func TestNextPendingReturnsOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	account := testsupport.NewAccount(t, st, "studio")
	first := testsupport.NewItem(t, st, account.ID, "first", store.KindImage)
	testsupport.NewItem(t, st, account.ID, "second", store.KindVideo)

	next, err := st.NextPending(ctx, account.ID)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest item %d, got %#v", first.ID, next)
	}

	updated, err := st.MarkPosted(ctx, first.ID)
	if err != nil {
		t.Fatalf("MarkPosted failed: %v", err)
	}
	if !updated {
		t.Fatal("expected pending item to be marked posted")
	}

	next, err = st.NextPending(ctx, account.ID)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.Name != "second" {
		t.Fatalf("expected second item next, got %#v", next)
	}
}

func TestMarkPostedOnlyUpdatesPendingItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	account := testsupport.NewAccount(t, st, "studio")
	item := testsupport.NewItem(t, st, account.ID, "clip", store.KindVideo)

	if updated, err := st.MarkPosted(ctx, item.ID); err != nil || !updated {
		t.Fatalf("first MarkPosted = (%v, %v), want (true, nil)", updated, err)
	}
	if updated, err := st.MarkPosted(ctx, item.ID); err != nil || updated {
		t.Fatalf("second MarkPosted = (%v, %v), want (false, nil)", updated, err)
	}
}

func TestDeleteAccountCascadesToItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	account := testsupport.NewAccount(t, st, "studio")
	item := testsupport.NewItem(t, st, account.ID, "clip", store.KindImage)

	deleted, err := st.DeleteAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected account to be deleted")
	}

	orphan, err := st.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if orphan != nil {
		t.Fatalf("expected item to be removed with account, got %#v", orphan)
	}
}

func TestAddRunStatsAccumulatesAtomically(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	run, err := st.CreateRun(ctx, "manual")
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	deltas := []store.RunDelta{
		{AccountsTried: 1},
		{AccountsTried: 1, Succeeded: 1, Images: 1},
		{AccountsTried: 1, Failed: 1},
		{Succeeded: 1, Videos: 1},
	}
	for _, delta := range deltas {
		if err := st.AddRunStats(ctx, run.ID, delta); err != nil {
			t.Fatalf("AddRunStats failed: %v", err)
		}
	}

	fetched, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched.AccountsTried != 3 || fetched.Succeeded != 2 || fetched.Failed != 1 {
		t.Fatalf("unexpected counters: %#v", fetched)
	}
	if fetched.Images != 1 || fetched.Videos != 1 {
		t.Fatalf("unexpected media counters: %#v", fetched)
	}
	if fetched.EndedAt != nil {
		t.Fatal("expected run to still be open")
	}

	if err := st.CloseRun(ctx, run.ID); err != nil {
		t.Fatalf("CloseRun failed: %v", err)
	}
	fetched, err = st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched.EndedAt == nil {
		t.Fatal("expected run to be closed")
	}
}

func TestAttemptLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	account := testsupport.NewAccount(t, st, "studio")
	item := testsupport.NewItem(t, st, account.ID, "clip", store.KindVideo)
	run, err := st.CreateRun(ctx, "manual")
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	attempt, err := st.OpenAttempt(ctx, &run.ID, account.ID, &item.ID, item.Kind)
	if err != nil {
		t.Fatalf("OpenAttempt failed: %v", err)
	}
	if attempt.Status != store.AttemptRunning {
		t.Fatalf("expected running attempt, got %q", attempt.Status)
	}

	if err := st.CloseAttempt(ctx, attempt.ID, store.AttemptRunning, ""); err == nil {
		t.Fatal("expected closing to running to fail")
	}
	if err := st.CloseAttempt(ctx, attempt.ID, store.AttemptFailed, "download failed"); err != nil {
		t.Fatalf("CloseAttempt failed: %v", err)
	}

	fetched, err := st.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("GetAttempt failed: %v", err)
	}
	if fetched.Status != store.AttemptFailed || fetched.ErrorReason != "download failed" {
		t.Fatalf("unexpected attempt: %#v", fetched)
	}
	if fetched.EndedAt == nil {
		t.Fatal("expected closed attempt to have an end time")
	}

	// A terminal attempt must not be rewritten by a later close.
	if err := st.CloseAttempt(ctx, attempt.ID, store.AttemptSuccess, ""); err != nil {
		t.Fatalf("CloseAttempt failed: %v", err)
	}
	fetched, err = st.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("GetAttempt failed: %v", err)
	}
	if fetched.Status != store.AttemptFailed {
		t.Fatalf("expected attempt to stay failed, got %q", fetched.Status)
	}
}

func TestLogSkippedRecordsTerminalAttempt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	account := testsupport.NewAccount(t, st, "studio")
	run, err := st.CreateRun(ctx, "0 4 * * *")
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	attempt, err := st.LogSkipped(ctx, &run.ID, account.ID, store.SkipReasonNoPendingItem)
	if err != nil {
		t.Fatalf("LogSkipped failed: %v", err)
	}
	if attempt.Status != store.AttemptSkipped {
		t.Fatalf("expected skipped attempt, got %q", attempt.Status)
	}
	if attempt.ErrorReason != store.SkipReasonNoPendingItem {
		t.Fatalf("unexpected reason %q", attempt.ErrorReason)
	}

	forRun, err := st.AttemptsForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("AttemptsForRun failed: %v", err)
	}
	if len(forRun) != 1 || forRun[0].ID != attempt.ID {
		t.Fatalf("unexpected attempts for run: %#v", forRun)
	}
}
