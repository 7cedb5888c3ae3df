package namer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.Add(-2 * time.Hour)

	write := func(name string, mtime time.Time) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("data"), 0644))
		require.NoError(t, os.Chtimes(p, mtime, mtime))
		return p
	}

	oldVideo := write("a.mp4", old)
	oldAudio := write("b.m4a", old)
	oldLog := write("a.log", old)
	oldPart := write("c.mp4.part", old)
	freshVideo := write("d.mp4", now)
	unrelated := write("notes.txt", old)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp4"), 0755))

	stats, err := Prune(dir, 30*time.Minute, now)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Deleted)
	assert.Equal(t, int64(16), stats.Freed)
	assert.Zero(t, stats.Failed)
	for _, p := range []string{oldVideo, oldAudio, oldLog, oldPart} {
		assert.NoFileExists(t, p)
	}
	assert.FileExists(t, freshVideo)
	assert.FileExists(t, unrelated)
	assert.DirExists(t, filepath.Join(dir, "sub.mp4"))
}

func TestPruneMissingDir(t *testing.T) {
	stats, err := Prune(filepath.Join(t.TempDir(), "missing"), time.Minute, time.Now())
	require.NoError(t, err)
	assert.Zero(t, stats.Deleted)
}

func TestPruneRejectsNonPositiveAge(t *testing.T) {
	_, err := Prune(t.TempDir(), 0, time.Now())
	assert.Error(t, err)
}
