package instagram_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"carousel/internal/services"
	"carousel/internal/services/instagram"
	"carousel/internal/store"
)

func newClient(t *testing.T, handler http.Handler) (*instagram.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := instagram.New(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client, server
}

func TestCreateContainerSendsReelsForVideo(t *testing.T) {
	var captured map[string]string
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ig-user/media" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
	}))

	id, err := client.CreateContainer(context.Background(), instagram.CreateContainerRequest{
		IGUserID:  "ig-user",
		Token:     "token",
		Kind:      store.KindVideo,
		PublicURL: "https://media.example.com/public/uploads/clip.mp4",
		Caption:   "my clip",
	})
	if err != nil {
		t.Fatalf("CreateContainer failed: %v", err)
	}
	if id != "container-1" {
		t.Fatalf("unexpected container id %q", id)
	}
	if captured["media_type"] != "REELS" {
		t.Fatalf("expected REELS media type, got %#v", captured)
	}
	if captured["video_url"] == "" || captured["image_url"] != "" {
		t.Fatalf("expected video_url only, got %#v", captured)
	}
	if captured["caption"] != "my clip" {
		t.Fatalf("unexpected caption %#v", captured)
	}
}

func TestCreateContainerSendsImageURLForImages(t *testing.T) {
	var captured map[string]string
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "container-2"})
	}))

	if _, err := client.CreateContainer(context.Background(), instagram.CreateContainerRequest{
		IGUserID:  "ig-user",
		Token:     "token",
		Kind:      store.KindImage,
		PublicURL: "https://media.example.com/public/uploads/pic.jpg",
	}); err != nil {
		t.Fatalf("CreateContainer failed: %v", err)
	}
	if captured["image_url"] == "" || captured["media_type"] != "" {
		t.Fatalf("expected image_url without media_type, got %#v", captured)
	}
}

func TestAwaitReadyPollsUntilFinished(t *testing.T) {
	var calls atomic.Int32
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "IN_PROGRESS"
		if calls.Add(1) >= 3 {
			status = "FINISHED"
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status_code": status})
	}))

	status, err := client.AwaitReady(context.Background(), "token", "container-1", 5*time.Second, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("AwaitReady failed: %v", err)
	}
	if status != instagram.StatusFinished {
		t.Fatalf("unexpected status %q", status)
	}
	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 polls, got %d", calls.Load())
	}
}

func TestAwaitReadyFailsFastOnRemoteError(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status_code": "ERROR"})
	}))

	_, err := client.AwaitReady(context.Background(), "token", "container-1", 5*time.Second, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected remote processing error")
	}
	if !errors.Is(err, services.ErrRemoteAPI) {
		t.Fatalf("expected remote api marker, got %v", err)
	}
}

func TestAwaitReadyTimesOut(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status_code": "IN_PROGRESS"})
	}))

	_, err := client.AwaitReady(context.Background(), "token", "container-1", 50*time.Millisecond, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout")
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

func TestPublishContainerReturnsMediaID(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ig-user/media_publish" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["creation_id"] != "container-1" {
			t.Errorf("unexpected payload %#v", payload)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "media-9"})
	}))

	id, err := client.PublishContainer(context.Background(), instagram.PublishRequest{
		IGUserID:    "ig-user",
		Token:       "token",
		ContainerID: "container-1",
	})
	if err != nil {
		t.Fatalf("PublishContainer failed: %v", err)
	}
	if id != "media-9" {
		t.Fatalf("unexpected media id %q", id)
	}
}

func TestNon2xxResponsesSurfaceAPIError(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid token"}}`))
	}))

	_, err := client.CreateContainer(context.Background(), instagram.CreateContainerRequest{
		IGUserID: "ig-user",
		Token:    "bad",
		Kind:     store.KindImage,
	})
	if err == nil {
		t.Fatal("expected api error")
	}
	var apiErr *instagram.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError in chain, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
}
