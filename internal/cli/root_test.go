package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okYtdlp = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "2025.01.01"
  exit 0
fi
out=""
ext=mp4
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift ;;
    -x) ext=m4a ;;
  esac
  shift
done
path=$(printf '%s' "$out" | sed "s/%(ext)s/$ext/")
printf 'media-bytes' > "$path"
echo '{"title":"A clip","duration":4}'
`

const networkErrorYtdlp = `#!/bin/sh
echo "network error" >&2
exit 1
`

const noArtifactYtdlp = `#!/bin/sh
exit 0
`

// withConfig writes a config pointing yt-dlp at a shell script and returns its path
func withConfig(t *testing.T, ytdlpScript string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "yt-dlp")
	require.NoError(t, os.WriteFile(bin, []byte(ytdlpScript), 0755))

	cfg := filepath.Join(dir, "config.yml")
	content := fmt.Sprintf("output_dir: %s\nytdlp:\n  binary: %s\nffmpeg:\n  embedded: false\n", filepath.Join(dir, "out"), bin)
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0644))
	return cfg
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decodeOne(t *testing.T, stdout string) map[string]any {
	t.Helper()
	require.Equal(t, 1, strings.Count(stdout, "\n"), "stdout must carry exactly one line: %q", stdout)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	return got
}

func TestFetchSuccess(t *testing.T) {
	tests := []struct {
		name     string
		mode     []string
		wantExt  string
		wantType string
	}{
		{name: "Default mode", wantExt: "mp4", wantType: "video"},
		{name: "Video", mode: []string{"video"}, wantExt: "mp4", wantType: "video"},
		{name: "Audio", mode: []string{"audio"}, wantExt: "m4a", wantType: "audio"},
		{name: "Audio flag", mode: []string{"--mode", "audio"}, wantExt: "m4a", wantType: "audio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := withConfig(t, okYtdlp)
			out := t.TempDir()

			args := append([]string{"--config", cfg, "https://www.tiktok.com/@user/video/7312345/", out}, tt.mode...)
			code, stdout, _ := run(t, args...)

			got := decodeOne(t, stdout)
			assert.Equal(t, 0, code)
			assert.Equal(t, true, got["success"])
			assert.Equal(t, tt.wantExt, got["fileExtension"])
			assert.Equal(t, tt.wantType, got["mediaType"])
			assert.Equal(t, "7312345", got["id"])
			assert.Equal(t, float64(len("media-bytes")), got["filesize"])
			assert.FileExists(t, got["filepath"].(string))
			assert.Regexp(t, `^\d+\.\d{2}s$`, got["elapsedTime"])
		})
	}
}

func TestFetchFailureContract(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "Tool failure", script: networkErrorYtdlp, want: "{\"error\":\"network error\"}\n"},
		{name: "Missing artifact", script: noArtifactYtdlp, want: "{\"error\":\"artifact not found\"}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := withConfig(t, tt.script)
			code, stdout, _ := run(t, "--config", cfg, "https://example.com/reel/ABC123/?x=1", t.TempDir())

			assert.Equal(t, 1, code)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestFetchArgumentErrors(t *testing.T) {
	cfg := withConfig(t, okYtdlp)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "No arguments", args: []string{}, want: "accepts between 2 and 3 arg(s)"},
		{name: "One argument", args: []string{"https://youtu.be/x"}, want: "accepts between 2 and 3 arg(s)"},
		{name: "Bad mode", args: []string{"https://youtu.be/x", t.TempDir(), "gif"}, want: "invalid mode"},
		{name: "Bad URL", args: []string{"ftp://host/x", t.TempDir()}, want: "invalid url"},
		{name: "Bad backend", args: []string{"--backend", "curl", "https://youtu.be/x", t.TempDir()}, want: "invalid backend"},
		{name: "Negative timeout", args: []string{"--timeout=-5s", "https://youtu.be/x", t.TempDir()}, want: "invalid timeout \"-5s\": must not be negative"},
		{name: "Unknown flag", args: []string{"--nope", "https://youtu.be/x", t.TempDir()}, want: "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, _ := run(t, append([]string{"--config", cfg}, tt.args...)...)

			got := decodeOne(t, stdout)
			assert.Equal(t, 1, code)
			assert.Len(t, got, 1)
			assert.Contains(t, got["error"], tt.want)
		})
	}
}

func TestFetchTimeoutFlag(t *testing.T) {
	cfg := withConfig(t, "#!/bin/sh\nexec sleep 30\n")

	start := time.Now()
	code, stdout, _ := run(t, "--config", cfg, "--timeout", "200ms", "https://youtu.be/ABC", t.TempDir())

	assert.Equal(t, 1, code)
	assert.Equal(t, "{\"error\":\"timeout\"}\n", stdout)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestFetchVerboseMirrorsLog(t *testing.T) {
	cfg := withConfig(t, okYtdlp)
	code, stdout, stderr := run(t, "--config", cfg, "-v", "https://youtu.be/ABC", t.TempDir())

	assert.Equal(t, 0, code)
	decodeOne(t, stdout)
	assert.Contains(t, stderr, "fetch started")
}

func TestIDCommand(t *testing.T) {
	code, stdout, _ := run(t, "id", "https://www.instagram.com/reel/ABC123/?igsh=x")
	assert.Equal(t, 0, code)
	assert.Equal(t, "{\"id\":\"ABC123\",\"backend\":\"instagram\"}\n", stdout)

	code, stdout, _ = run(t, "id", "not a url")
	assert.Equal(t, 1, code)
	assert.Contains(t, decodeOne(t, stdout)["error"], "invalid url")
}

func TestPruneCommand(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old-20240101T000000-aaaaaaaa.mp4")
	fresh := filepath.Join(dir, "new-20240101T000000-bbbbbbbb.mp4")
	require.NoError(t, os.WriteFile(old, []byte("12345"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("12345"), 0644))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	code, stdout, stderr := run(t, "prune", dir, "--max-age", "1h")

	assert.Equal(t, 0, code)
	got := decodeOne(t, stdout)
	assert.Equal(t, float64(1), got["deleted"])
	assert.Contains(t, stderr, "1 file(s) deleted")
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	code, stdout, _ := run(t, "init", "--config", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Saved "+path+"\n", stdout)
	assert.FileExists(t, path)

	code, stdout, _ = run(t, "init", "--config", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, decodeOne(t, stdout)["error"], "already exists")
}

func TestDoctorCommand(t *testing.T) {
	cfg := withConfig(t, okYtdlp)
	code, stdout, _ := run(t, "doctor", "--config", cfg)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "yt-dlp")
	assert.Contains(t, stdout, "2025.01.01")
	assert.Contains(t, stdout, cfg)
}

func TestDoctorFailedCheckPrintsOnlyTable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX paths")
	}
	cfg := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("ytdlp:\n  binary: /nonexistent/yt-dlp\n"), 0644))

	code, stdout, _ := run(t, "doctor", "--config", cfg)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "yt-dlp")
	assert.NotContains(t, stdout, `{"error"`)
}

func TestVersionAndHelpKeepStdoutClean(t *testing.T) {
	code, stdout, _ := run(t, "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "mfetch v"))

	code, stdout, stderr := run(t, "--help")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "mfetch <url> <output_dir>")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2*1024*1024))
}

func TestCompletionCommand(t *testing.T) {
	code, stdout, _ := run(t, "completion", "bash")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "mfetch")

	code, _, _ = run(t, "completion", "tcsh")
	assert.Equal(t, 1, code)
}
