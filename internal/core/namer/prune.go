package namer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// prunableExts are the files an invocation may leave in its output directory
var prunableExts = map[string]bool{
	".mp4":  true,
	".m4a":  true,
	".webm": true,
	".part": true,
	".ytdl": true,
	LogExt:  true,
}

// PruneStats summarizes a prune pass
type PruneStats struct {
	Deleted int   `json:"deleted"`
	Freed   int64 `json:"freed"`
	Failed  int   `json:"failed"`
}

// Prune deletes artifacts, intermediate files and logs in dir whose
// modification time is older than maxAge. Subdirectories and unknown files
// are left alone. A missing dir is not an error.
func Prune(dir string, maxAge time.Duration, now time.Time) (PruneStats, error) {
	var stats PruneStats
	if maxAge <= 0 {
		return stats, fmt.Errorf("max age must be positive, got %s", maxAge)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stats, nil
		}
		return stats, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	cutoff := now.Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !prunableExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			stats.Failed++
			continue
		}
		stats.Deleted++
		stats.Freed += info.Size()
	}
	return stats, nil
}
