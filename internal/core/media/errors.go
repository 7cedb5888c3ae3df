package media

import (
	"context"
	"errors"
)

// ErrorKind classifies why an invocation failed
type ErrorKind int

const (
	KindInvalidURL ErrorKind = iota + 1
	KindInvalidMode
	KindDirectoryUnwritable
	KindExternalToolFailure
	KindArtifactMissing
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "InvalidUrl"
	case KindInvalidMode:
		return "InvalidMode"
	case KindDirectoryUnwritable:
		return "DirectoryUnwritable"
	case KindExternalToolFailure:
		return "ExternalToolFailure"
	case KindArtifactMissing:
		return "ArtifactMissing"
	case KindTimeout:
		return "Timeout"
	}
	return "Unknown"
}

// Error is a classified failure. Msg is what ends up in the JSON result.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrArtifactMissing is returned when the tool reported success but left no usable file
var ErrArtifactMissing = &Error{Kind: KindArtifactMissing, Msg: "artifact not found"}

// ErrTimeout is returned when the external tool was killed after the caller's timeout
var ErrTimeout = &Error{Kind: KindTimeout, Msg: "timeout", Err: context.DeadlineExceeded}

// ToolFailure wraps the diagnostic text of a failed external tool
func ToolFailure(diagnostic string, err error) *Error {
	return &Error{Kind: KindExternalToolFailure, Msg: diagnostic, Err: err}
}

// KindOf returns the kind of err, or 0 if err is not a *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// FailureFrom converts any error into a failure Result
func FailureFrom(err error) Result {
	if err == nil {
		return Failed("unknown error")
	}
	var e *Error
	if errors.As(err, &e) {
		return Failed(e.Error())
	}
	return Failed(err.Error())
}
