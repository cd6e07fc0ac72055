package session

import (
	ncerr "gotalk/internal/errors"
	"gotalk/internal/metrics"
)

// Outcome classifies why a session ended.
type Outcome int

const (
	OutcomePeer  Outcome = iota // the peer hung up or announced it was leaving
	OutcomeLocal                // the operator quit, ran out of input, or interrupted
	OutcomeFault                // an I/O operation failed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePeer:
		return "peer disconnected"
	case OutcomeLocal:
		return "local exit"
	case OutcomeFault:
		return "connection error"
	default:
		return "unknown"
	}
}

// Result describes a finished session.
type Result struct {
	Cause       Cause
	InputClosed bool // operator input reached EOF
	PeerQuit    bool // the peer sent a line starting with the quit directive
	HalfClosed  bool // our write direction was shut down
	Aborted     bool // a blocked call had to be forced out
	Stats       metrics.Snapshot
}

// Outcome derives the classification from the recorded cause.  A peer
// close that merely answers our own end of input counts as local,
// unless the peer announced its own departure first.
func (r Result) Outcome() Outcome {
	switch {
	case r.Cause.IsFault():
		return OutcomeFault
	case r.Cause == CausePeerClosed:
		if r.InputClosed && !r.PeerQuit {
			return OutcomeLocal
		}
		return OutcomePeer
	default:
		return OutcomeLocal
	}
}

// Err returns ncerr.ErrSessionFault for a faulted session and nil
// otherwise.
func (r Result) Err() error {
	if r.Outcome() == OutcomeFault {
		return ncerr.ErrSessionFault
	}
	return nil
}
