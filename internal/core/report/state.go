package report

import (
	"fmt"

	"github.com/rs/zerolog"
)

// State is the lifecycle position of an invocation
type State int

const (
	Start State = iota
	Normalizing
	Fetching
	Verifying
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Normalizing:
		return "normalizing"
	case Fetching:
		return "fetching"
	case Verifying:
		return "verifying"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transitions are allowed
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Any non-terminal state may fail.
var transitions = map[State]State{
	Start:       Normalizing,
	Normalizing: Fetching,
	Fetching:    Verifying,
	Verifying:   Succeeded,
}

// Tracker follows one invocation through its states
type Tracker struct {
	state State
	log   zerolog.Logger
}

// NewTracker starts a Tracker in Start
func NewTracker(log zerolog.Logger) *Tracker {
	return &Tracker{state: Start, log: log}
}

// SetLogger replaces the logger used for transitions, e.g. once the log file exists
func (t *Tracker) SetLogger(log zerolog.Logger) { t.log = log }

// State returns the current state
func (t *Tracker) State() State { return t.state }

// Advance moves to next, rejecting transitions the lifecycle does not allow
func (t *Tracker) Advance(next State) error {
	ok := next == Failed && !t.state.Terminal()
	if want, has := transitions[t.state]; has && want == next {
		ok = true
	}
	if !ok {
		return fmt.Errorf("invalid transition %s -> %s", t.state, next)
	}
	t.log.Debug().Str("from", t.state.String()).Str("to", next.String()).Msg("state")
	t.state = next
	return nil
}
