package pipeline

import (
	"fmt"

	"github.com/guiyumin/mfetch/internal/core/config"
	"github.com/guiyumin/mfetch/internal/core/extractor"
	"github.com/guiyumin/mfetch/internal/core/ffmpeg"
	"github.com/guiyumin/mfetch/internal/core/fetch"
	"github.com/guiyumin/mfetch/internal/core/fetch/instagram"
	"github.com/guiyumin/mfetch/internal/core/fetch/ytdlp"
	"github.com/rs/zerolog"
)

// NewFactory returns a FetcherFactory configured from cfg. With merge set,
// yt-dlp video fetches download separate streams and mux them locally.
func NewFactory(cfg *config.Config, merge bool) FetcherFactory {
	return func(backend string, log zerolog.Logger) (fetch.Fetcher, error) {
		muxer := ffmpeg.New(cfg.FFmpeg.Binary, cfg.FFmpeg.Embedded, log)

		if backend == extractor.BackendInstagram && cfg.Instagram.Backend == config.InstagramYtdlp {
			backend = extractor.BackendYtdlp
		}

		switch backend {
		case extractor.BackendYtdlp:
			f := ytdlp.New(cfg.Ytdlp.Binary, cfg.Ytdlp.ExtraArgs, log)
			if merge {
				return ytdlp.NewMergeFetcher(f, muxer), nil
			}
			return f, nil
		case extractor.BackendInstagram:
			return instagram.New(instagram.Options{
				SessionID:   cfg.Instagram.SessionID,
				BrowserPath: cfg.Instagram.BrowserPath,
			}, muxer, log), nil
		}
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
