package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/guiyumin/mfetch/internal/core/extractor"
	"github.com/guiyumin/mfetch/internal/core/fetch"
	"github.com/guiyumin/mfetch/internal/core/logging"
	"github.com/guiyumin/mfetch/internal/core/media"
	"github.com/guiyumin/mfetch/internal/core/namer"
	"github.com/guiyumin/mfetch/internal/core/report"
	"github.com/guiyumin/mfetch/internal/core/version"
	"github.com/rs/zerolog"
)

// BackendAuto picks the backend from the URL host
const BackendAuto = "auto"

// FetcherFactory builds the fetcher for a backend. Fetchers that implement
// io.Closer are closed when the invocation ends.
type FetcherFactory func(backend string, log zerolog.Logger) (fetch.Fetcher, error)

// Pipeline turns one Request into one Result
type Pipeline struct {
	Factory FetcherFactory
	Backend string        // "auto", "ytdlp" or "instagram"
	Timeout time.Duration // 0 means no limit
	Console io.Writer     // when set, the invocation log is mirrored here
	Namer   *namer.Namer

	now func() time.Time
}

// New creates a Pipeline with auto backend selection
func New(factory FetcherFactory) *Pipeline {
	return &Pipeline{
		Factory: factory,
		Backend: BackendAuto,
		Namer:   namer.New(),
		now:     time.Now,
	}
}

// Run executes the request. It never panics and always returns a Result;
// every failure, including a panic in the fetch path, becomes a failure Result.
func (p *Pipeline) Run(ctx context.Context, req media.Request) (res media.Result) {
	start := p.clock()
	tracker := report.NewTracker(zerolog.Nop())
	log := logging.Nop()

	advance := func(next report.State) {
		if err := tracker.Advance(next); err != nil {
			log.Warn().Err(err).Msg("state transition rejected")
		}
	}
	fail := func(err error) media.Result {
		advance(report.Failed)
		log.Error().Err(err).Str("kind", media.KindOf(err).String()).Msg("request failed")
		return media.FailureFrom(err)
	}

	defer func() {
		if r := recover(); r != nil {
			res = fail(media.ToolFailure(fmt.Sprintf("internal error: %v", r), nil))
		}
		log.Info().
			Bool("success", res.OK).
			Str("elapsed", media.FormatElapsed(p.clock().Sub(start))).
			Msg("request finished")
		log.Close()
	}()

	advance(report.Normalizing)

	mode, err := media.ParseMode(req.Mode)
	if err != nil {
		return fail(err)
	}
	id, err := extractor.Normalize(req.URL)
	if err != nil {
		return fail(err)
	}

	target, err := p.namer().Reserve(req.OutputDir, mode, id)
	if err != nil {
		return fail(err)
	}

	l, err := logging.Open(target.LogPath, p.Console)
	if err != nil {
		return fail(&media.Error{Kind: media.KindDirectoryUnwritable, Msg: "directory unwritable: " + err.Error(), Err: err})
	}
	log = l
	tracker.SetLogger(log.Logger)

	backend := p.Backend
	if backend == "" || backend == BackendAuto {
		backend = extractor.Match(req.URL)
	}

	log.Info().
		Str("version", version.Version).
		Str("url", req.URL).
		Str("id", id).
		Str("mode", mode.String()).
		Str("backend", backend).
		Str("token", target.Token).
		Msg("request received")

	fetcher, err := p.Factory(backend, log.Logger)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := fetch.Close(fetcher); err != nil {
			log.Warn().Err(err).Msg("failed to release fetcher")
		}
	}()

	advance(report.Fetching)
	sup := &fetch.Supervisor{Fetcher: fetcher, Timeout: p.Timeout, Log: log.Logger}
	rep, err := sup.Run(ctx, fetch.Job{URL: req.URL, ID: id, Mode: mode, Target: target})
	if err != nil {
		return fail(err)
	}

	advance(report.Verifying)
	artifact, err := report.Verify(target)
	if err != nil {
		return fail(err)
	}
	if ok, container := report.Conforms(artifact); !ok {
		log.Warn().Str("container", container).Msg("artifact is not an mp4/m4a container")
	}
	advance(report.Succeeded)

	var title string
	if rep != nil {
		title = rep.Title
	}
	log.Info().Str("path", artifact.Path).Int64("size", artifact.Size).Msg("artifact verified")
	return media.Succeeded(artifact.Path, artifact.Size, mode, id, title, p.clock().Sub(start))
}

func (p *Pipeline) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

func (p *Pipeline) namer() *namer.Namer {
	if p.Namer == nil {
		p.Namer = namer.New()
	}
	return p.Namer
}
