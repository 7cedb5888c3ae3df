package namer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guiyumin/mfetch/internal/core/media"
)

// LogExt is the extension of the per-invocation log file
const LogExt = ".log"

// maxAttempts bounds how many tokens Reserve draws before giving up
const maxAttempts = 8

// maxHintLen keeps filenames well below filesystem limits
const maxHintLen = 48

// Target is the set of paths owned by one invocation
type Target struct {
	Token     string
	Dir       string
	Mode      media.Mode
	MediaPath string // <dir>/<token>.<ext>
	LogPath   string // <dir>/<token>.log
}

// Template returns a yt-dlp output template that resolves to MediaPath
// once the tool has remuxed or extracted into the expected container.
func (t *Target) Template() string {
	return filepath.Join(t.Dir, t.Token+".%(ext)s")
}

// Sibling returns a path next to the artifact sharing its token, e.g. for
// intermediate streams: Sibling("video", "mp4") -> <dir>/<token>.video.mp4
func (t *Target) Sibling(tag, ext string) string {
	return filepath.Join(t.Dir, t.Token+"."+tag+"."+ext)
}

// Namer produces collision-free target paths
type Namer struct {
	now   func() time.Time
	token func() string
}

// New creates a Namer using the wall clock and random UUIDs
func New() *Namer {
	return &Namer{
		now: time.Now,
		token: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		},
	}
}

// Reserve creates dir if needed and claims a fresh token in it.
//
// The claim is the exclusive creation of <token>.log; two invocations sharing a
// directory can never hold the same token, even across processes.
func (n *Namer) Reserve(dir string, mode media.Mode, hint string) (*Target, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, unwritable(errors.New("output directory not specified"))
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, unwritable(err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, unwritable(err)
	}

	hint = cleanHint(hint)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		token := n.newToken(hint)
		t := &Target{
			Token:     token,
			Dir:       abs,
			Mode:      mode,
			MediaPath: filepath.Join(abs, token+"."+mode.Extension()),
			LogPath:   filepath.Join(abs, token+LogExt),
		}

		f, err := os.OpenFile(t.LogPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, unwritable(err)
		}
		if err := f.Close(); err != nil {
			return nil, unwritable(err)
		}
		if _, err := os.Stat(t.MediaPath); err == nil {
			// Artifact left behind by someone else; keep the claim and draw again.
			continue
		}
		return t, nil
	}
	return nil, unwritable(fmt.Errorf("could not reserve a unique name in %s after %d attempts", abs, maxAttempts))
}

func (n *Namer) newToken(hint string) string {
	stamp := n.now().UTC().Format("20060102T150405")
	if hint == "" {
		return stamp + "-" + n.token()
	}
	return hint + "-" + stamp + "-" + n.token()
}

func cleanHint(hint string) string {
	hint = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, hint)
	if len(hint) > maxHintLen {
		hint = hint[:maxHintLen]
	}
	return hint
}

func unwritable(err error) error {
	return &media.Error{
		Kind: media.KindDirectoryUnwritable,
		Msg:  "directory unwritable: " + err.Error(),
		Err:  err,
	}
}
