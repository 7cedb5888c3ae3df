package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	l, err := Open(path, nil)
	require.NoError(t, err)
	l.Info().Str("state", "fetching").Msg("transition")
	l.Error().Str("stderr", "network error").Msg("tool failed")
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "fetching", lines[0]["state"])
	assert.Equal(t, "info", lines[0]["level"])
	assert.Contains(t, lines[0], "time")
	assert.Equal(t, "network error", lines[1]["stderr"])
}

func TestOpenMirrorsToConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var console bytes.Buffer

	l, err := Open(path, &console)
	require.NoError(t, err)
	l.Info().Msg("hello console")
	require.NoError(t, l.Close())

	assert.Contains(t, console.String(), "hello console")
	assert.NotContains(t, console.String(), "\x1b[", "buffer is not a terminal")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello console"`)
}

func TestOpenFailsOnMissingDir(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "run.log"), nil)
	assert.Error(t, err)
}

func TestNopClose(t *testing.T) {
	l := Nop()
	l.Info().Msg("dropped")
	assert.NoError(t, l.Close())
}
