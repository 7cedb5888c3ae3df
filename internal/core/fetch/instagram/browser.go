package instagram

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// session is a launched browser owned by a Client
type session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func (s *session) close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	return err
}

// postScript reads the video URL and title the page exposes to link previews,
// falling back to the rendered <video> element.
const postScript = `() => {
	const meta = (p) => {
		const el = document.querySelector('meta[property="' + p + '"]');
		return el ? el.content || '' : '';
	};
	const video = document.querySelector('video');
	return {
		video: meta('og:video:secure_url') || meta('og:video') || (video ? (video.currentSrc || video.src || '') : ''),
		title: meta('og:title') || document.title || '',
	};
}`

func (c *Client) resolveWithBrowser(ctx context.Context, postURL string) (*Post, error) {
	s, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.Navigate(postURL); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", postURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", postURL, err)
	}

	res, err := page.Eval(postScript)
	if err != nil {
		return nil, fmt.Errorf("failed to read post: %w", err)
	}

	post := &Post{
		MediaURL: strings.TrimSpace(res.Value.Get("video").Str()),
		Title:    strings.TrimSpace(res.Value.Get("title").Str()),
	}
	if !isPlayableURL(post.MediaURL) {
		return nil, errNoVideo
	}
	return post, nil
}

func (c *Client) connect(ctx context.Context) (*session, error) {
	if c.session != nil {
		return c.session, nil
	}

	l := c.createLauncher().Context(ctx)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	s := &session{launcher: l, browser: browser}

	if c.opts.SessionID != "" {
		err := browser.SetCookies([]*proto.NetworkCookieParam{{
			Name:     "sessionid",
			Value:    c.opts.SessionID,
			Domain:   ".instagram.com",
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
		}})
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to set session cookie: %w", err)
		}
	}

	c.session = s
	return s, nil
}

func (c *Client) createLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(!c.opts.Visible).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("no-first-run").
		Set("window-size", "1280,900").
		Set("user-agent", DefaultUserAgent)

	browserPath := c.opts.BrowserPath
	if browserPath == "" {
		browserPath = os.Getenv("ROD_BROWSER")
	}
	if browserPath != "" {
		l = l.Bin(browserPath)
	}
	return l
}

// BrowserAvailable reports whether a Chromium binary can be found without downloading one
func BrowserAvailable(browserPath string) (string, bool) {
	if browserPath == "" {
		browserPath = os.Getenv("ROD_BROWSER")
	}
	if browserPath != "" {
		_, err := os.Stat(browserPath)
		return browserPath, err == nil
	}
	return launcher.LookPath()
}
