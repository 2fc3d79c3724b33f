package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CleanStale removes staged files older than maxAge and returns how many were
// deleted. Files that vanish mid-scan are skipped rather than treated as
// failures.
func (p *Publisher) CleanStale(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(p.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read uploads directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(p.uploadsDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
