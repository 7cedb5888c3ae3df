package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/guiyumin/mfetch/internal/core/fetch"
	"github.com/guiyumin/mfetch/internal/core/media"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Format selectors. Video prefers mp4+m4a so the merge is a plain remux.
const (
	videoFormat       = "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/bv*+ba/b"
	videoOnlyFormat   = "bv*[ext=mp4]/bv*"
	audioFormat       = "ba[ext=m4a]/ba"
	defaultBinaryName = "yt-dlp"
)

// Fetcher downloads media with the yt-dlp binary
type Fetcher struct {
	Binary    string
	ExtraArgs []string
	Log       zerolog.Logger
}

// New creates a Fetcher. An empty binary means "yt-dlp" from PATH.
func New(binary string, extraArgs []string, log zerolog.Logger) *Fetcher {
	if binary == "" {
		binary = defaultBinaryName
	}
	return &Fetcher{Binary: binary, ExtraArgs: extraArgs, Log: log}
}

// Fetch downloads job.URL into job.Target.MediaPath
func (f *Fetcher) Fetch(ctx context.Context, job fetch.Job) (*fetch.Report, error) {
	var formatArgs []string
	if job.Mode == media.ModeAudio {
		formatArgs = audioArgs()
	} else {
		formatArgs = []string{
			"-f", videoFormat,
			"--merge-output-format", "mp4",
			"--remux-video", "mp4",
		}
	}
	return f.run(ctx, f.Args(job.URL, job.Target.Template(), formatArgs))
}

// Args builds the full yt-dlp argument list
func (f *Fetcher) Args(url, template string, formatArgs []string) []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--newline",
		"-j", "--no-simulate", // print the info JSON after downloading
		"-o", template,
	}
	args = append(args, formatArgs...)
	args = append(args, f.ExtraArgs...)
	// "--" keeps URLs starting with '-' from being read as options
	return append(args, "--", url)
}

func audioArgs() []string {
	return []string{
		"-f", audioFormat,
		"-x",
		"--audio-format", "m4a",
	}
}

// Version returns the output of yt-dlp --version
func (f *Fetcher) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, f.Binary, "--version").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (f *Fetcher) run(ctx context.Context, args []string) (*fetch.Report, error) {
	report := &fetch.Report{Command: f.Binary + " " + strings.Join(args, " ")}
	f.Log.Info().Str("command", report.Command).Msg("[yt-dlp] run")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// A killed yt-dlp may leave ffmpeg children holding the pipes open
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err := cmd.Run()
	report.Stderr = stderr.String()
	f.Log.Debug().
		Dur("elapsed", time.Since(start)).
		Str("stdout", stdout.String()).
		Str("stderr", report.Stderr).
		Msg("[yt-dlp] output")

	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			return report, media.ToolFailure(fmt.Sprintf("%s not found in PATH", f.Binary), err)
		}
		diagnostic := strings.TrimSpace(report.Stderr)
		if diagnostic == "" {
			diagnostic = fmt.Sprintf("%s failed: %v", f.Binary, err)
		}
		return report, media.ToolFailure(diagnostic, err)
	}

	parseInfo(stdout.Bytes(), report, f.Log)
	return report, nil
}

// parseInfo reads title and duration from the last info JSON line printed by -j
func parseInfo(stdout []byte, report *fetch.Report, log zerolog.Logger) {
	lines := strings.Split(strings.TrimSpace(string(stdout)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !gjson.Valid(line) {
			continue
		}
		info := gjson.Parse(line)
		report.Title = info.Get("title").String()
		report.Duration = info.Get("duration").Float()
		if fp := info.Get("requested_downloads.0.filepath"); fp.Exists() {
			log.Debug().Str("filepath", fp.String()).Msg("[yt-dlp] reported file")
		}
		return
	}
}
