package extractor

import (
	"sort"
	"strings"
)

// Backend names
const (
	BackendYtdlp     = "ytdlp"
	BackendInstagram = "instagram"
)

// backendsByHost maps hostnames to the backend that fetches them
var backendsByHost = map[string]string{}

// hostPrefixes are stripped when the exact host is not registered
var hostPrefixes = []string{"www.", "m.", "mobile."}

// Register routes the given hostnames to a backend
func Register(backend string, hosts ...string) {
	for _, host := range hosts {
		backendsByHost[strings.ToLower(host)] = backend
	}
}

// Match returns the backend for a URL using hostname lookup.
// Unknown hosts and unparsable URLs go to yt-dlp, which supports most sites.
func Match(rawURL string) string {
	u, _, err := parseLoose(rawURL)
	if err != nil {
		return BackendYtdlp
	}

	host := strings.ToLower(u.Hostname())
	if b, ok := backendsByHost[host]; ok {
		return b
	}
	for _, prefix := range hostPrefixes {
		if trimmed, ok := strings.CutPrefix(host, prefix); ok {
			if b, ok := backendsByHost[trimmed]; ok {
				return b
			}
		}
	}
	return BackendYtdlp
}

// Hosts returns the registered hosts grouped by backend, sorted
func Hosts() map[string][]string {
	result := make(map[string][]string)
	for host, b := range backendsByHost {
		result[b] = append(result[b], host)
	}
	for _, hosts := range result {
		sort.Strings(hosts)
	}
	return result
}

func init() {
	Register(BackendInstagram,
		"instagram.com",
		"instagr.am",
	)
	Register(BackendYtdlp,
		"youtube.com",
		"youtu.be",
		"music.youtube.com",
		"tiktok.com",
		"vm.tiktok.com",
		"twitter.com",
		"x.com",
		"facebook.com",
		"fb.watch",
		"vimeo.com",
		"reddit.com",
		"v.redd.it",
		"pinterest.com",
		"pin.it",
	)
}
