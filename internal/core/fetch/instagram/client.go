package instagram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/guiyumin/mfetch/internal/core/fetch"
	"github.com/guiyumin/mfetch/internal/core/media"
	"github.com/rs/zerolog"
)

// DefaultUserAgent is sent with media requests
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures a Client
type Options struct {
	// SessionID is the value of the sessionid cookie; needed for private or age-gated posts
	SessionID string

	// BrowserPath overrides the Chromium binary (falls back to $ROD_BROWSER, then auto-detect)
	BrowserPath string

	// Visible shows the browser window (for debugging)
	Visible bool
}

// Post is the media behind an Instagram URL
type Post struct {
	MediaURL string
	Title    string
}

// Client fetches Instagram posts through a headless browser session.
// A Client belongs to one invocation: create it, fetch, Close it.
type Client struct {
	opts  Options
	muxer fetch.Muxer
	http  *http.Client
	log   zerolog.Logger

	resolve func(ctx context.Context, postURL string) (*Post, error)
	session *session
}

// New creates a Client. The browser is started lazily on the first Fetch.
func New(opts Options, muxer fetch.Muxer, log zerolog.Logger) *Client {
	c := &Client{
		opts:  opts,
		muxer: muxer,
		http:  &http.Client{},
		log:   log,
	}
	c.resolve = c.resolveWithBrowser
	return c
}

// Fetch resolves the post's video and downloads it to the target. In audio
// mode the video is downloaded next to the target and its audio track copied out.
func (c *Client) Fetch(ctx context.Context, job fetch.Job) (*fetch.Report, error) {
	report := &fetch.Report{Command: "instagram " + job.URL}

	post, err := c.resolve(ctx, job.URL)
	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		return report, media.ToolFailure(err.Error(), err)
	}
	report.Title = post.Title
	c.log.Info().Str("media_url", post.MediaURL).Str("title", post.Title).Msg("[instagram] resolved")

	dst := job.Target.MediaPath
	if job.Mode == media.ModeAudio {
		dst = job.Target.Sibling("src", "mp4")
		defer os.Remove(dst)
	}

	if err := c.download(ctx, post.MediaURL, job.URL, dst); err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		return report, media.ToolFailure(err.Error(), err)
	}

	if job.Mode == media.ModeAudio {
		if err := c.muxer.ExtractAudio(ctx, dst, job.Target.MediaPath); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			return report, media.ToolFailure(err.Error(), err)
		}
	}
	return report, nil
}

// download streams mediaURL into dst via a .part file renamed on completion
func (c *Client) download(ctx context.Context, mediaURL, referer, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("invalid media url: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Referer", referer)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("media request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("media request failed: %s", resp.Status)
	}

	part := dst + ".part"
	f, err := os.Create(part)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(part)
		return fmt.Errorf("media download interrupted: %w", err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		os.Remove(part)
		return fmt.Errorf("media download incomplete: got %d of %d bytes", n, resp.ContentLength)
	}
	c.log.Debug().Int64("bytes", n).Str("path", dst).Msg("[instagram] downloaded")
	return os.Rename(part, dst)
}

// Close shuts the browser session down
func (c *Client) Close() error {
	if c.session == nil {
		return nil
	}
	err := c.session.close()
	c.session = nil
	return err
}

var errNoVideo = errors.New("no video found on page (the post may be an image, private, or require login)")

func isPlayableURL(u string) bool {
	return strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://")
}
