package session

import "sync"

// Cause records which event first stopped a session.
type Cause int

const (
	CauseNone       Cause = iota
	CausePeerClosed       // zero-length read: the peer shut down its write side
	CauseQuit             // the operator entered the quit directive
	CauseInterrupt        // the host asked the process to stop
	CauseReadFault        // a read failed for a reason other than shutdown
	CauseWriteFault       // a write failed
	CauseInputFault       // local input failed for a reason other than EOF
	CauseFinalized        // the controller finalized a session nobody stopped
)

var causeNames = map[Cause]string{
	CauseNone:       "none",
	CausePeerClosed: "peer closed",
	CauseQuit:       "quit",
	CauseInterrupt:  "interrupt",
	CauseReadFault:  "read fault",
	CauseWriteFault: "write fault",
	CauseInputFault: "input fault",
	CauseFinalized:  "finalized",
}

func (c Cause) String() string {
	if s, ok := causeNames[c]; ok {
		return s
	}
	return "unknown"
}

// IsFault reports whether c came from a failed I/O operation.
func (c Cause) IsFault() bool {
	return c == CauseReadFault || c == CauseWriteFault || c == CauseInputFault
}

// Termination is the shared "session should continue" flag.  It starts
// running and flips to stopped at most once; nothing can restart it.
// The first Stop wins and its cause is kept.
type Termination struct {
	mu      sync.Mutex
	stopped bool
	cause   Cause
	done    chan struct{}
}

// NewTermination returns a running termination context.
func NewTermination() *Termination {
	return &Termination{done: make(chan struct{})}
}

// Running reports whether the session should continue.
func (t *Termination) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// Stop flips the flag to stopped.  It reports whether this call made
// the transition; later calls are no-ops and leave the cause untouched.
func (t *Termination) Stop(c Cause) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	t.cause = c
	close(t.done)
	return true
}

// Cause returns the cause recorded by the first Stop, or CauseNone
// while running.
func (t *Termination) Cause() Cause {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cause
}

// Done returns a channel closed when the session stops.
func (t *Termination) Done() <-chan struct{} { return t.done }
