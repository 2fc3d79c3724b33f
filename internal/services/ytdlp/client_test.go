package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"carousel/internal/services"
	"carousel/internal/services/ytdlp"
)

type fakeExecutor struct {
	lastArgs []string
	stderr   string
	err      error
	onRun    func(dir string)
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string) (string, error) {
	f.lastArgs = args
	if f.onRun != nil {
		f.onRun(outputDir(args))
	}
	return f.stderr, f.err
}

// outputDir extracts the download directory from the -o template argument.
func outputDir(args []string) string {
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			return filepath.Dir(args[i+1])
		}
	}
	return ""
}

func TestFetchReturnsNewestCompletedFile(t *testing.T) {
	root := t.TempDir()
	exec := &fakeExecutor{
		onRun: func(dir string) {
			older := filepath.Join(dir, "clip.webm")
			newer := filepath.Join(dir, "clip.mp4")
			if err := os.WriteFile(older, []byte("old"), 0o644); err != nil {
				t.Fatalf("write older: %v", err)
			}
			if err := os.WriteFile(newer, []byte("new"), 0o644); err != nil {
				t.Fatalf("write newer: %v", err)
			}
			past := time.Now().Add(-time.Minute)
			if err := os.Chtimes(older, past, past); err != nil {
				t.Fatalf("chtimes: %v", err)
			}
			// Partial downloads must never win.
			if err := os.WriteFile(filepath.Join(dir, "clip.mp4.part"), []byte("partial"), 0o644); err != nil {
				t.Fatalf("write partial: %v", err)
			}
		},
	}

	client, err := ytdlp.New("yt-dlp", root, ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	download, err := client.Fetch(context.Background(), "https://example.com/v/1", ytdlp.AuthOptions{})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if filepath.Base(download.Path) != "clip.mp4" {
		t.Fatalf("expected newest file, got %q", download.Path)
	}
	if !strings.HasPrefix(download.Dir, root) {
		t.Fatalf("expected download dir under root, got %q", download.Dir)
	}
}

func TestFetchIsolatesConcurrentDownloads(t *testing.T) {
	root := t.TempDir()
	exec := &fakeExecutor{
		onRun: func(dir string) {
			if err := os.WriteFile(filepath.Join(dir, "media.mp4"), []byte("x"), 0o644); err != nil {
				t.Fatalf("write media: %v", err)
			}
		},
	}
	client, err := ytdlp.New("yt-dlp", root, ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := client.Fetch(context.Background(), "https://example.com/v/1", ytdlp.AuthOptions{})
	if err != nil {
		t.Fatalf("first Fetch failed: %v", err)
	}
	second, err := client.Fetch(context.Background(), "https://example.com/v/2", ytdlp.AuthOptions{})
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if first.Dir == second.Dir {
		t.Fatal("expected each fetch to use a private directory")
	}
}

func TestFetchPassesAuthAndRetryFlags(t *testing.T) {
	exec := &fakeExecutor{
		onRun: func(dir string) {
			_ = os.WriteFile(filepath.Join(dir, "media.mp4"), []byte("x"), 0o644)
		},
	}
	client, err := ytdlp.New("yt-dlp", t.TempDir(),
		ytdlp.WithExecutor(exec),
		ytdlp.WithAuthDefaults(ytdlp.AuthOptions{CookiesFile: "/tmp/cookies.txt", UserAgent: "agent"}),
		ytdlp.WithRetryPolicy(7, 11),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.Fetch(context.Background(), "https://example.com/v/1", ytdlp.AuthOptions{Referer: "https://ref.example.com"}); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	joined := strings.Join(exec.lastArgs, " ")
	for _, fragment := range []string{
		"--retries 7",
		"--retry-sleep 11",
		"--cookies /tmp/cookies.txt",
		"--user-agent agent",
		"--referer https://ref.example.com",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected args to contain %q, got %q", fragment, joined)
		}
	}
	if exec.lastArgs[len(exec.lastArgs)-1] != "https://example.com/v/1" {
		t.Fatalf("expected source url last, got %q", exec.lastArgs[len(exec.lastArgs)-1])
	}
}

func TestFetchFailureIncludesDiagnostics(t *testing.T) {
	exec := &fakeExecutor{stderr: "ERROR: login required", err: errors.New("exit status 1")}
	client, err := ytdlp.New("yt-dlp", t.TempDir(), ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = client.Fetch(context.Background(), "https://www.instagram.com/reel/abc/", ytdlp.AuthOptions{})
	if err == nil {
		t.Fatal("expected fetch failure")
	}
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected acquisition marker, got %v", err)
	}
	message := err.Error()
	if !strings.Contains(message, "login required") {
		t.Fatalf("expected stderr in error, got %q", message)
	}
	if !strings.Contains(message, "cookies_file") {
		t.Fatalf("expected cookies hint for gated host, got %q", message)
	}
}

func TestFetchFailsWhenNoFileProduced(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := ytdlp.New("yt-dlp", t.TempDir(), ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.Fetch(context.Background(), "https://example.com/v/1", ytdlp.AuthOptions{}); err == nil {
		t.Fatal("expected error when downloader produced no file")
	}
}
