package media

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Mode selects what kind of artifact a fetch produces
type Mode string

const (
	ModeVideo Mode = "video"
	ModeAudio Mode = "audio"
)

// ParseMode parses a mode argument. An empty string means video.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeVideo):
		return ModeVideo, nil
	case string(ModeAudio):
		return ModeAudio, nil
	}
	return "", &Error{
		Kind: KindInvalidMode,
		Msg:  fmt.Sprintf("invalid mode %q: want video or audio", s),
	}
}

// Extension returns the file extension (without dot) of the artifact
func (m Mode) Extension() string {
	if m == ModeAudio {
		return "m4a"
	}
	return "mp4"
}

// MediaType returns the value reported as mediaType
func (m Mode) MediaType() string {
	if m == ModeAudio {
		return "audio"
	}
	return "video"
}

func (m Mode) String() string { return string(m) }

// Request is one fetch request as received on the command line
type Request struct {
	URL       string
	OutputDir string
	Mode      string
}

// Result is the outcome of one invocation. Exactly one Result is reported
// per process; OK selects which of the two JSON shapes is produced.
type Result struct {
	OK bool

	FilePath      string
	FileSize      int64
	MediaType     string
	FileExtension string
	ID            string
	Title         string
	Elapsed       time.Duration

	Message string
}

// Succeeded builds a success Result
func Succeeded(path string, size int64, mode Mode, id, title string, elapsed time.Duration) Result {
	return Result{
		OK:            true,
		FilePath:      path,
		FileSize:      size,
		MediaType:     mode.MediaType(),
		FileExtension: mode.Extension(),
		ID:            id,
		Title:         title,
		Elapsed:       elapsed,
	}
}

// Failed builds a failure Result
func Failed(msg string) Result {
	return Result{Message: msg}
}

type successJSON struct {
	Success       bool   `json:"success"`
	FilePath      string `json:"filepath"`
	FileSize      int64  `json:"filesize"`
	MediaType     string `json:"mediaType"`
	FileExtension string `json:"fileExtension"`
	ID            string `json:"id,omitempty"`
	Title         string `json:"title,omitempty"`
	ElapsedTime   string `json:"elapsedTime"`
}

type failureJSON struct {
	Error string `json:"error"`
}

// MarshalJSON renders the result in the wire shape expected by callers
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.OK {
		return json.Marshal(failureJSON{Error: r.Message})
	}
	return json.Marshal(successJSON{
		Success:       true,
		FilePath:      r.FilePath,
		FileSize:      r.FileSize,
		MediaType:     r.MediaType,
		FileExtension: r.FileExtension,
		ID:            r.ID,
		Title:         r.Title,
		ElapsedTime:   FormatElapsed(r.Elapsed),
	})
}

// FormatElapsed formats a duration as seconds with two decimals, e.g. "1.23s"
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
