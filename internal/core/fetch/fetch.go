package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/guiyumin/mfetch/internal/core/media"
	"github.com/guiyumin/mfetch/internal/core/namer"
	"github.com/rs/zerolog"
)

// Job is a single external fetch: where to get it and where to put it
type Job struct {
	URL    string
	ID     string
	Mode   media.Mode
	Target *namer.Target
}

// Report is what a fetcher learned while fetching
type Report struct {
	Title    string
	Duration float64 // seconds, 0 if unknown
	Command  string
	Stderr   string
}

// Fetcher performs one external fetch operation, writing Job.Target.MediaPath.
// Implementations that hold resources also implement io.Closer.
type Fetcher interface {
	Fetch(ctx context.Context, job Job) (*Report, error)
}

// Muxer merges separate streams and extracts audio tracks
type Muxer interface {
	Merge(ctx context.Context, videoPath, audioPath, outputPath string) error
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
}

// Supervisor runs exactly one fetch attempt and classifies its outcome
type Supervisor struct {
	Fetcher Fetcher
	Timeout time.Duration // 0 means no limit
	Log     zerolog.Logger
}

// Run blocks until the fetch completes, fails or times out. There is no
// retry: each invocation already has a fresh output path, so callers that
// want another attempt simply invoke again.
func (s *Supervisor) Run(ctx context.Context, job Job) (report *Report, err error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.Log.Info().
		Str("url", job.URL).
		Str("id", job.ID).
		Str("mode", job.Mode.String()).
		Str("output", job.Target.MediaPath).
		Dur("timeout", s.Timeout).
		Msg("fetch started")

	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = media.ToolFailure(fmt.Sprintf("fetch panicked: %v", r), nil)
		}
		s.logOutcome(report, err, time.Since(start))
	}()

	report, err = s.Fetcher.Fetch(ctx, job)
	if err == nil {
		return report, nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return report, media.ErrTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		return report, media.ToolFailure("canceled", ctx.Err())
	case media.KindOf(err) != 0:
		return report, err
	}
	return report, media.ToolFailure(err.Error(), err)
}

func (s *Supervisor) logOutcome(report *Report, err error, elapsed time.Duration) {
	event := s.Log.Info()
	if err != nil {
		event = s.Log.Error().Err(err).Str("kind", media.KindOf(err).String())
	}
	if report != nil {
		event = event.Str("command", report.Command).Str("stderr", report.Stderr)
		if report.Title != "" {
			event = event.Str("title", report.Title)
		}
	}
	event.Dur("elapsed", elapsed).Msg("fetch finished")
}

// Close releases f if it holds resources
func Close(f Fetcher) error {
	if c, ok := f.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
