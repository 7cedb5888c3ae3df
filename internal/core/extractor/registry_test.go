package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Instagram", input: "https://instagram.com/reel/abc", expected: BackendInstagram},
		{name: "Instagram www", input: "https://www.instagram.com/p/abc/", expected: BackendInstagram},
		{name: "Instagram mobile", input: "https://m.instagram.com/p/abc/", expected: BackendInstagram},
		{name: "Instagram without scheme", input: "instagram.com/p/abc", expected: BackendInstagram},
		{name: "Host is case-insensitive", input: "https://WWW.Instagram.COM/p/abc", expected: BackendInstagram},
		{name: "YouTube", input: "https://www.youtube.com/watch?v=abc", expected: BackendYtdlp},
		{name: "YouTube short link", input: "https://youtu.be/abc", expected: BackendYtdlp},
		{name: "Unknown host", input: "https://example.org/video/1", expected: BackendYtdlp},
		{name: "Garbage", input: "::::", expected: BackendYtdlp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Match(tt.input))
		})
	}
}

func TestHosts(t *testing.T) {
	hosts := Hosts()
	assert.Contains(t, hosts[BackendInstagram], "instagram.com")
	assert.Contains(t, hosts[BackendYtdlp], "youtube.com")
	assert.IsIncreasing(t, hosts[BackendYtdlp])
}
