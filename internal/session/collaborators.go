package session

import "context"

// Input yields the operator's lines, without the trailing newline.  It
// returns io.EOF once input is exhausted and ctx.Err() when ctx is
// cancelled while waiting.
type Input interface {
	ReadLine(ctx context.Context) (string, error)
}

// Display renders what the peer sends.  Show receives raw chunks that
// need not align with line boundaries and must not retain p.
type Display interface {
	Show(p []byte)
	Notice(msg string)
}

// Source tags where a fault happened.
type Source int

const (
	SourceRead Source = iota
	SourceWrite
	SourceInput
	SourceSetup
)

func (s Source) String() string {
	switch s {
	case SourceRead:
		return "read"
	case SourceWrite:
		return "write"
	case SourceInput:
		return "input"
	case SourceSetup:
		return "setup"
	default:
		return "unknown"
	}
}

// Reporter receives faults.  It is purely observational.
type Reporter interface {
	Report(src Source, err error)
}
