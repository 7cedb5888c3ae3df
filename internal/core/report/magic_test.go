package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContainer(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   string
	}{
		{name: "MP4", header: []byte("\x00\x00\x00\x20ftypisom\x00\x00\x02\x00"), want: ContainerISOBMFF},
		{name: "M4A", header: []byte("\x00\x00\x00\x1cftypM4A \x00\x00"), want: ContainerISOBMFF},
		{name: "WebM", header: []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81}, want: ContainerWebM},
		{name: "MPEG-TS", header: []byte{0x47, 0x40, 0x11, 0x10}, want: ContainerMPEGTS},
		{name: "HTML error page", header: []byte("<!DOCTYPE html>"), want: ""},
		{name: "Short", header: []byte("ab"), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "f")
			require.NoError(t, os.WriteFile(p, tt.header, 0644))

			got, err := DetectContainer(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConforms(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.mp4")
	require.NoError(t, os.WriteFile(p, []byte("\x00\x00\x00\x20ftypisom"), 0644))
	ok, container := Conforms(Artifact{Path: p, Size: 12})
	assert.True(t, ok)
	assert.Equal(t, ContainerISOBMFF, container)

	ok, _ = Conforms(Artifact{Path: filepath.Join(t.TempDir(), "missing.mp4")})
	assert.False(t, ok)
}
