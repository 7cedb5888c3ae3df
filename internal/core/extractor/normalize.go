package extractor

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/guiyumin/mfetch/internal/core/media"
)

// pathMarkers are path segments that are followed by the media identifier,
// e.g. /reel/<id>, /shorts/<id>, /@user/video/<id>, /user/status/<id>.
var pathMarkers = map[string]bool{
	"p":       true,
	"reel":    true,
	"reels":   true,
	"tv":      true,
	"stories": true,
	"shorts":  true,
	"video":   true,
	"videos":  true,
	"status":  true,
	"pin":     true,
	"embed":   true,
	"live":    true,
}

// Normalize extracts the resource identifier from a media URL.
//
// Rules are tried in order:
//  1. a v query parameter on any path containing a watch segment
//  2. the segment following a known path marker (/stories/<user>/<id> skips the user);
//     a marker with nothing after it does not match
//  3. the last non-empty path segment
//
// Anything after the first '?' or '#' is ignored except for rule 1.
// The identifier keeps letters and digits of any script, '-' and '_'.
func Normalize(rawURL string) (string, error) {
	u, query, err := parseLoose(rawURL)
	if err != nil {
		return "", err
	}

	segments := pathSegments(u.Path)

	if hasSegment(segments, "watch") {
		if values, err := url.ParseQuery(query); err == nil {
			if v := values.Get("v"); v != "" {
				return finish(v, rawURL)
			}
		}
	}

	for i, seg := range segments {
		marker := strings.ToLower(seg)
		if !pathMarkers[marker] {
			continue
		}
		next := i + 1
		if marker == "stories" {
			next = i + 2
		}
		if next < len(segments) {
			return finish(segments[next], rawURL)
		}
	}

	if len(segments) == 0 {
		return "", invalidURL("url has no path")
	}
	return finish(segments[len(segments)-1], rawURL)
}

// parseLoose parses a URL that may lack a scheme. The fragment is dropped and
// the query is split off at the first '?' and returned separately.
func parseLoose(rawURL string) (*url.URL, string, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return nil, "", invalidURL("empty url")
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	base, query, _ := strings.Cut(s, "?")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, "", invalidURL(err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", invalidURL(fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	if u.Hostname() == "" {
		return nil, "", invalidURL("url has no host")
	}
	return u, query, nil
}

func pathSegments(p string) []string {
	var segments []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func hasSegment(segments []string, name string) bool {
	for _, seg := range segments {
		if strings.EqualFold(seg, name) {
			return true
		}
	}
	return false
}

func finish(seg, rawURL string) (string, error) {
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	id := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return -1
	}, seg)
	if id == "" {
		return "", invalidURL(fmt.Sprintf("no identifier in %s", rawURL))
	}
	return id, nil
}

func invalidURL(reason string) error {
	return &media.Error{
		Kind: media.KindInvalidURL,
		Msg:  "invalid url: " + reason,
	}
}
