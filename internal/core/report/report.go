package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/guiyumin/mfetch/internal/core/media"
	"github.com/guiyumin/mfetch/internal/core/namer"
)

// ErrAlreadyReported is returned by Emit after the first result was written
var ErrAlreadyReported = errors.New("result already reported")

// Artifact describes a verified file on disk
type Artifact struct {
	Path string
	Size int64
}

// Verify checks that the target's media file exists and is non-empty
func Verify(t *namer.Target) (Artifact, error) {
	info, err := os.Stat(t.MediaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Artifact{}, media.ErrArtifactMissing
		}
		return Artifact{}, &media.Error{Kind: media.KindArtifactMissing, Msg: media.ErrArtifactMissing.Msg, Err: err}
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return Artifact{}, media.ErrArtifactMissing
	}
	return Artifact{Path: t.MediaPath, Size: info.Size()}, nil
}

// Reporter writes the single result of an invocation
type Reporter struct {
	out    io.Writer
	once   sync.Once
	mu     sync.Mutex
	result *media.Result
}

// NewReporter creates a Reporter writing to out (normally stdout)
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Emit writes r as one JSON line. Only the first call writes; later calls
// return ErrAlreadyReported and leave the output untouched.
func (rp *Reporter) Emit(r media.Result) error {
	err := ErrAlreadyReported
	rp.once.Do(func() {
		rp.mu.Lock()
		rp.result = &r
		rp.mu.Unlock()

		data, merr := json.Marshal(r)
		if merr != nil {
			data, _ = json.Marshal(media.Failed(fmt.Sprintf("encode result: %v", merr)))
		}
		_, err = rp.out.Write(append(data, '\n'))
	})
	return err
}

// Reported reports whether a result was emitted
func (rp *Reporter) Reported() bool {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.result != nil
}

// Failed reports whether the emitted result was a failure
func (rp *Reporter) Failed() bool {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.result != nil && !rp.result.OK
}
