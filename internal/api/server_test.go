package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"carousel/internal/api"
	"carousel/internal/logging"
	"carousel/internal/store"
	"carousel/internal/testsupport"
	"carousel/internal/workflow"
)

type stubRunner struct {
	summary *workflow.RunSummary
	err     error

	lastTrigger   string
	lastAccountID int64
}

func (r *stubRunner) RunForAllAccounts(_ context.Context, trigger string) (*workflow.RunSummary, error) {
	r.lastTrigger = trigger
	return r.summary, r.err
}

func (r *stubRunner) RunForAccount(_ context.Context, accountID int64, trigger string) (*workflow.RunSummary, error) {
	r.lastTrigger = trigger
	r.lastAccountID = accountID
	return r.summary, r.err
}

func newTestServer(t *testing.T, runner api.Runner) (*api.Server, *store.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	server, err := api.NewServer(cfg, st, runner, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if server == nil {
		t.Fatal("expected server with bind address configured")
	}
	return server, st
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	server, _ := newTestServer(t, &stubRunner{})
	handler := server.Handler()

	created := doJSON(t, handler, http.MethodPost, "/api/accounts", map[string]string{
		"username":     "studio",
		"ig_user_id":   "ig-1",
		"access_token": "secret",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", created.Code, created.Body.String())
	}
	var account struct {
		ID             int64 `json:"id"`
		HasCredentials bool  `json:"has_credentials"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode account: %v", err)
	}
	if !account.HasCredentials {
		t.Fatal("expected credentials flag set")
	}
	if created.Body.String() == "" || bytes.Contains(created.Body.Bytes(), []byte("secret")) {
		t.Fatal("access token must not appear in responses")
	}

	listed := doJSON(t, handler, http.MethodGet, "/api/accounts", nil)
	if listed.Code != http.StatusOK {
		t.Fatalf("list status = %d", listed.Code)
	}

	deleted := doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/accounts/%d", account.ID), nil)
	if deleted.Code != http.StatusOK {
		t.Fatalf("delete status = %d", deleted.Code)
	}

	missing := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/accounts/%d", account.ID), nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted account, got %d", missing.Code)
	}
}

func TestItemCreationValidatesKindAndAccount(t *testing.T) {
	server, st := newTestServer(t, &stubRunner{})
	handler := server.Handler()
	account := testsupport.NewAccount(t, st, "studio")

	badKind := doJSON(t, handler, http.MethodPost, "/api/items", map[string]any{
		"account_id": account.ID,
		"kind":       "gif",
		"source_url": "https://example.com/a",
	})
	if badKind.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad kind, got %d", badKind.Code)
	}

	orphan := doJSON(t, handler, http.MethodPost, "/api/items", map[string]any{
		"account_id": int64(9999),
		"kind":       "image",
		"source_url": "https://example.com/a",
	})
	if orphan.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown account, got %d", orphan.Code)
	}

	ok := doJSON(t, handler, http.MethodPost, "/api/items", map[string]any{
		"account_id": account.ID,
		"name":       "clip",
		"kind":       "video",
		"source_url": "https://example.com/a",
	})
	if ok.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", ok.Code, ok.Body.String())
	}

	pendingOnly := doJSON(t, handler, http.MethodGet, "/api/items?status=pending", nil)
	var response struct {
		Items []struct {
			Status string `json:"status"`
		} `json:"items"`
	}
	if err := json.Unmarshal(pendingOnly.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(response.Items) != 1 || response.Items[0].Status != "pending" {
		t.Fatalf("unexpected items: %#v", response.Items)
	}
}

func TestTriggerAllReturnsSummaryEvenWithFailures(t *testing.T) {
	runner := &stubRunner{summary: &workflow.RunSummary{
		Trigger: api.TriggerManual,
		Results: []workflow.Result{
			{AccountID: 1, Username: "a", Outcome: workflow.OutcomeSuccess, MediaID: "media-1"},
			{AccountID: 2, Username: "b", Outcome: workflow.OutcomeFailed, Reason: "download refused"},
		},
	}}
	server, _ := newTestServer(t, runner)

	recorder := doJSON(t, server.Handler(), http.MethodPost, "/api/scheduler/trigger/all", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("trigger status = %d", recorder.Code)
	}
	if runner.lastTrigger != api.TriggerManual {
		t.Fatalf("unexpected trigger label %q", runner.lastTrigger)
	}

	var summary workflow.RunSummary
	if err := json.Unmarshal(recorder.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.RunID != nil {
		t.Fatalf("manual trigger must not carry a run id, got %d", *summary.RunID)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
	if summary.Failed() != 1 {
		t.Fatalf("expected one failure in summary, got %d", summary.Failed())
	}
}

func TestTriggerAccountRoutesID(t *testing.T) {
	runner := &stubRunner{summary: &workflow.RunSummary{Trigger: api.TriggerManual}}
	server, _ := newTestServer(t, runner)

	recorder := doJSON(t, server.Handler(), http.MethodPost, "/api/scheduler/trigger/account/42", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("trigger status = %d", recorder.Code)
	}
	if runner.lastAccountID != 42 {
		t.Fatalf("unexpected account id %d", runner.lastAccountID)
	}
}

func TestRunHistoryEndpoints(t *testing.T) {
	server, st := newTestServer(t, &stubRunner{})
	handler := server.Handler()
	ctx := context.Background()

	account := testsupport.NewAccount(t, st, "studio")
	run, err := st.CreateRun(ctx, "manual")
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if _, err := st.LogSkipped(ctx, &run.ID, account.ID, store.SkipReasonNoPendingItem); err != nil {
		t.Fatalf("LogSkipped failed: %v", err)
	}

	listed := doJSON(t, handler, http.MethodGet, "/api/runs", nil)
	if listed.Code != http.StatusOK {
		t.Fatalf("runs status = %d", listed.Code)
	}

	detail := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/runs/%d", run.ID), nil)
	if detail.Code != http.StatusOK {
		t.Fatalf("run detail status = %d", detail.Code)
	}
	var response struct {
		Attempts []struct {
			Status string `json:"status"`
		} `json:"attempts"`
	}
	if err := json.Unmarshal(detail.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode run detail: %v", err)
	}
	if len(response.Attempts) != 1 || response.Attempts[0].Status != "skipped" {
		t.Fatalf("unexpected attempts: %#v", response.Attempts)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t, &stubRunner{})

	recorder := doJSON(t, server.Handler(), http.MethodGet, "/healthz", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", recorder.Code)
	}
}
