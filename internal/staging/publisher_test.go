package staging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"carousel/internal/staging"
	"carousel/internal/testsupport"
)

func TestPublishCopiesWithoutMovingSource(t *testing.T) {
	base := t.TempDir()
	uploads := filepath.Join(base, "uploads")
	source := filepath.Join(base, "clip.mp4")
	testsupport.WriteFile(t, source, 128)

	publisher, err := staging.NewPublisher(uploads, "https://media.example.com/")
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}

	staged, err := publisher.Publish(source)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if _, err := os.Stat(source); err != nil {
		t.Fatalf("source should remain after publish: %v", err)
	}
	info, err := os.Stat(staged.Path)
	if err != nil {
		t.Fatalf("staged copy missing: %v", err)
	}
	if info.Size() != 128 {
		t.Fatalf("staged copy size = %d, want 128", info.Size())
	}
	if !strings.HasSuffix(staged.Name, "-clip.mp4") {
		t.Fatalf("expected unique prefix before original name, got %q", staged.Name)
	}
	if staged.URL != "https://media.example.com/public/uploads/"+staged.Name {
		t.Fatalf("unexpected staged url %q", staged.URL)
	}
}

func TestPublishGeneratesUniqueNames(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "clip.mp4")
	testsupport.WriteFile(t, source, 16)

	publisher, err := staging.NewPublisher(filepath.Join(base, "uploads"), "http://localhost:8417")
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}

	first, err := publisher.Publish(source)
	if err != nil {
		t.Fatalf("first Publish failed: %v", err)
	}
	second, err := publisher.Publish(source)
	if err != nil {
		t.Fatalf("second Publish failed: %v", err)
	}
	if first.Name == second.Name {
		t.Fatalf("expected unique staged names, both %q", first.Name)
	}
}

func TestPublishSanitizesAwkwardNames(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "my clip (final)?.mp4")
	testsupport.WriteFile(t, source, 16)

	publisher, err := staging.NewPublisher(filepath.Join(base, "uploads"), "http://localhost:8417")
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}

	staged, err := publisher.Publish(source)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if strings.ContainsAny(staged.Name, " ()?") {
		t.Fatalf("expected sanitized name, got %q", staged.Name)
	}
}

func TestRetractIsIdempotent(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "clip.mp4")
	testsupport.WriteFile(t, source, 16)

	publisher, err := staging.NewPublisher(filepath.Join(base, "uploads"), "http://localhost:8417")
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}

	staged, err := publisher.Publish(source)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := publisher.Retract(staged.Path); err != nil {
		t.Fatalf("first Retract failed: %v", err)
	}
	if err := publisher.Retract(staged.Path); err != nil {
		t.Fatalf("second Retract should be a no-op: %v", err)
	}
	if err := publisher.Retract(""); err != nil {
		t.Fatalf("empty Retract should be a no-op: %v", err)
	}
}

func TestCleanStaleRemovesOnlyOldFiles(t *testing.T) {
	base := t.TempDir()
	uploads := filepath.Join(base, "uploads")

	stale := filepath.Join(uploads, "old.mp4")
	fresh := filepath.Join(uploads, "new.mp4")
	testsupport.WriteFile(t, stale, 16)
	testsupport.WriteFile(t, fresh, 16)
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	publisher, err := staging.NewPublisher(uploads, "http://localhost:8417")
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}

	removed, err := publisher.CleanStale(24 * time.Hour)
	if err != nil {
		t.Fatalf("CleanStale failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale file removed, err=%v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh file kept: %v", err)
	}
}
