package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Muxer merges and splits media containers with ffmpeg.
// The system ffmpeg is preferred; the embedded WASM build is used when it is
// missing and Embedded is set.
type Muxer struct {
	Binary   string
	Embedded bool
	Log      zerolog.Logger

	run func(ctx context.Context, args []string, dirs []string) ([]byte, error)
}

// New creates a Muxer. An empty binary means "ffmpeg" from PATH.
func New(binary string, embedded bool, log zerolog.Logger) *Muxer {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Muxer{Binary: binary, Embedded: embedded, Log: log}
}

// Available checks if the configured ffmpeg is installed and available in PATH
func (m *Muxer) Available() bool {
	_, err := exec.LookPath(m.Binary)
	return err == nil
}

// Merge muxes separate video and audio files into one mp4 using stream copy
func (m *Muxer) Merge(ctx context.Context, videoPath, audioPath, outputPath string) error {
	videoInfo, err := os.Stat(videoPath)
	if err != nil {
		return fmt.Errorf("video file not found: %w", err)
	}
	audioInfo, err := os.Stat(audioPath)
	if err != nil {
		return fmt.Errorf("audio file not found: %w", err)
	}
	m.Log.Debug().
		Str("video", videoPath).Int64("video_bytes", videoInfo.Size()).
		Str("audio", audioPath).Int64("audio_bytes", audioInfo.Size()).
		Str("output", outputPath).
		Msg("[ffmpeg] merge")

	// -map 0:v -map 1:a: take video from first input, audio from second
	args := []string{
		"-hide_banner",
		"-threads", "1",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c", "copy",
		"-f", "mp4",
		"-y",
		outputPath,
	}
	if err := m.exec(ctx, args, videoPath, audioPath, outputPath); err != nil {
		return fmt.Errorf("ffmpeg merge failed: %w", err)
	}

	outputInfo, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("output file not created: %w", err)
	}
	inputTotal := videoInfo.Size() + audioInfo.Size()
	if outputInfo.Size() < inputTotal/10 {
		m.Log.Warn().
			Int64("output_bytes", outputInfo.Size()).
			Int64("input_bytes", inputTotal).
			Msg("[ffmpeg] output file is suspiciously small")
	}
	return nil
}

// ExtractAudio copies the audio track of inputPath into an m4a container
func (m *Muxer) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file not found: %w", err)
	}

	args := []string{
		"-hide_banner",
		"-i", inputPath,
		"-vn",
		"-c:a", "copy",
		"-f", "mp4",
		"-y",
		outputPath,
	}
	if err := m.exec(ctx, args, inputPath, outputPath); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("output file not created: %w", err)
	}
	return nil
}

// exec runs ffmpeg with args. paths are the files touched, whose directories
// must be visible to the embedded build.
func (m *Muxer) exec(ctx context.Context, args []string, paths ...string) error {
	dirs := make([]string, 0, len(paths))
	for _, p := range paths {
		dirs = append(dirs, filepath.Dir(p))
	}

	run := m.run
	engine := m.Binary
	switch {
	case run != nil:
	case m.Available():
		run = m.runSystem
	case m.Embedded:
		run = runEmbedded
		engine = "embedded"
	default:
		return fmt.Errorf("%s not found in PATH", m.Binary)
	}

	m.Log.Debug().Str("engine", engine).Str("command", "ffmpeg "+strings.Join(args, " ")).Msg("[ffmpeg] run")
	start := time.Now()
	output, err := run(ctx, args, dirs)
	event := m.Log.Debug()
	if err != nil {
		event = m.Log.Error().Err(err)
	}
	event.Dur("elapsed", time.Since(start)).Str("output", string(output)).Msg("[ffmpeg] done")
	if err != nil {
		if msg := lastLine(output); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func (m *Muxer) runSystem(ctx context.Context, args []string, _ []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, m.Binary, args...)
	cmd.WaitDelay = 2 * time.Second
	return cmd.CombinedOutput()
}

func lastLine(output []byte) string {
	lines := bytes.Split(bytes.TrimSpace(output), []byte("\n"))
	return strings.TrimSpace(string(lines[len(lines)-1]))
}
