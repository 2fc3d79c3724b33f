package testsupport

import (
	"context"
	"testing"

	"carousel/internal/config"
	"carousel/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewAccount creates an account with publishable credentials for tests.
func NewAccount(t testing.TB, st *store.Store, username string) *store.Account {
	t.Helper()

	account, err := st.CreateAccount(context.Background(), &store.Account{
		Username:    username,
		IGUserID:    "ig-" + username,
		AccessToken: "token-" + username,
	})
	if err != nil {
		t.Fatalf("store.CreateAccount: %v", err)
	}
	return account
}

// NewItem queues a pending item for tests.
func NewItem(t testing.TB, st *store.Store, accountID int64, name string, kind store.MediaKind) *store.Item {
	t.Helper()

	item, err := st.AddItem(context.Background(), accountID, name, kind, "https://example.com/media/"+name)
	if err != nil {
		t.Fatalf("store.AddItem: %v", err)
	}
	return item
}
