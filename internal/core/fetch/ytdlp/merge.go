package ytdlp

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/guiyumin/mfetch/internal/core/fetch"
	"github.com/guiyumin/mfetch/internal/core/media"
	"golang.org/x/sync/errgroup"
)

// MergeFetcher fetches the video-only and audio-only streams concurrently and
// muxes them into the artifact. It is only used when explicitly requested;
// audio jobs go straight to the wrapped Fetcher.
type MergeFetcher struct {
	Fetcher *Fetcher
	Muxer   fetch.Muxer
}

// NewMergeFetcher wraps f with a separate-stream fetch and mux step
func NewMergeFetcher(f *Fetcher, muxer fetch.Muxer) *MergeFetcher {
	return &MergeFetcher{Fetcher: f, Muxer: muxer}
}

func (m *MergeFetcher) Fetch(ctx context.Context, job fetch.Job) (*fetch.Report, error) {
	if job.Mode == media.ModeAudio {
		return m.Fetcher.Fetch(ctx, job)
	}

	t := job.Target
	videoPath := t.Sibling("video", "mp4")
	audioPath := t.Sibling("audio", "m4a")
	defer func() {
		os.Remove(videoPath)
		os.Remove(audioPath)
	}()

	videoCmd := m.Fetcher.Args(job.URL, stripExt(videoPath)+".%(ext)s", []string{
		"-f", videoOnlyFormat,
		"--remux-video", "mp4",
	})
	audioCmd := m.Fetcher.Args(job.URL, stripExt(audioPath)+".%(ext)s", audioArgs())

	var videoReport, audioReport *fetch.Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := m.Fetcher.run(gctx, videoCmd)
		videoReport = r
		return err
	})
	g.Go(func() error {
		r, err := m.Fetcher.run(gctx, audioCmd)
		audioReport = r
		return err
	})
	if err := g.Wait(); err != nil {
		return joinReports(videoReport, audioReport), err
	}

	report := joinReports(videoReport, audioReport)
	if err := m.Muxer.Merge(ctx, videoPath, audioPath, t.MediaPath); err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		return report, media.ToolFailure(err.Error(), err)
	}
	return report, nil
}

func joinReports(video, audio *fetch.Report) *fetch.Report {
	joined := &fetch.Report{}
	for _, r := range []*fetch.Report{video, audio} {
		if r == nil {
			continue
		}
		if joined.Title == "" {
			joined.Title = r.Title
		}
		if joined.Duration == 0 {
			joined.Duration = r.Duration
		}
		joined.Command = strings.TrimSpace(joined.Command + "\n" + r.Command)
		joined.Stderr = strings.TrimSpace(joined.Stderr + "\n" + r.Stderr)
	}
	return joined
}

func stripExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}
