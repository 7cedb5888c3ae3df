package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Logger is the per-invocation log. It writes JSON lines to the log file
// reserved next to the artifact and, when a console is attached, mirrors
// them in human-readable form.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// Open appends to the log file at path. When console is non-nil every
// event is also written to it through a ConsoleWriter.
func Open(path string, console io.Writer) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	var w io.Writer = f
	if console != nil {
		w = zerolog.MultiLevelWriter(f, NewConsoleWriter(console))
	}

	return &Logger{
		Logger: zerolog.New(w).With().Timestamp().Logger(),
		file:   f,
	}, nil
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

// NewConsoleWriter returns a ConsoleWriter for w, colored only when w is a terminal
func NewConsoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !IsTerminal(w),
		TimeFormat: time.TimeOnly,
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Nop returns a Logger that discards everything
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}
