// Package console connects a session to the operator's terminal: lines
// typed on stdin go to the peer, chunks from the peer are printed to
// stdout with a label, and faults are logged.
package console

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"

	ncerr "gotalk/internal/errors"
	"gotalk/internal/session"
	"gotalk/util"
)

// Prompt is printed before each operator line on an interactive terminal.
const Prompt = "> "

type lineResult struct {
	line string
	err  error
}

// Input reads operator lines from a reader whose pending read can be
// cancelled.  A single pump goroutine owns the reader; ReadLine only
// waits on it, so an abandoned wait never loses the reader.
type Input struct {
	cr    cancelreader.CancelReader
	out   io.Writer // prompt destination, nil when not interactive
	lines chan lineResult
	done  chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	closeErr  error
}

// NewInput wraps r.  When r is a terminal the prompt is written to out
// before each line.
func NewInput(r io.Reader, out io.Writer) (*Input, error) {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		// epoll refuses regular files such as a redirected stdin; hide
		// the file so the portable reader is used instead.
		if cr, err = cancelreader.NewReader(struct{ io.Reader }{r}); err != nil {
			return nil, err
		}
	}
	in := &Input{
		cr:    cr,
		lines: make(chan lineResult),
		done:  make(chan struct{}),
	}
	if IsTerminal(r) {
		in.out = out
	}
	return in, nil
}

// ReadLine returns the next line without its line terminator.  The
// final line is returned even when it lacks a newline; io.EOF follows.
func (in *Input) ReadLine(ctx context.Context) (string, error) {
	in.startOnce.Do(func() { go in.pump() })

	if in.out != nil {
		io.WriteString(in.out, Prompt) //nolint:errcheck
	}

	select {
	case r, ok := <-in.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-in.done:
		return "", io.EOF
	}
}

// Close cancels a pending read and stops the pump.
func (in *Input) Close() error {
	in.closeOnce.Do(func() {
		close(in.done)
		in.cr.Cancel()
		in.closeErr = in.cr.Close()
	})
	return in.closeErr
}

func (in *Input) pump() {
	defer close(in.lines)
	br := bufio.NewReader(in.cr)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if !in.deliver(lineResult{line: strings.TrimRight(line, "\r\n")}) {
				return
			}
		}
		if err != nil {
			if ncerr.Is(err, cancelreader.ErrCanceled) {
				return
			}
			if !ncerr.IsEOF(err) {
				in.deliver(lineResult{err: err})
			}
			return
		}
	}
}

func (in *Input) deliver(r lineResult) bool {
	select {
	case in.lines <- r:
		return true
	case <-in.done:
		return false
	}
}

// Display prints what the peer sends.  Every line is prefixed with the
// peer's label; notices go on their own line in brackets.
type Display struct {
	mu          sync.Mutex
	out         io.Writer
	label       string
	interactive bool
	midLine     bool
}

// NewDisplay writes to out.  interactive re-prints the prompt after each
// completed peer line.
func NewDisplay(out io.Writer, label string, interactive bool) *Display {
	return &Display{out: out, label: label, interactive: interactive}
}

// Show prints a chunk.  Chunks need not end on a line boundary.
func (d *Display) Show(p []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sb strings.Builder
	if !d.midLine && d.interactive {
		// move off the prompt the operator is looking at
		sb.WriteString("\r")
	}
	for len(p) > 0 {
		if !d.midLine {
			sb.WriteString(d.label)
			sb.WriteString(": ")
			d.midLine = true
		}
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			sb.Write(p)
			break
		}
		sb.Write(p[:i+1])
		p = p[i+1:]
		d.midLine = false
	}
	if !d.midLine && d.interactive {
		sb.WriteString(Prompt)
	}
	io.WriteString(d.out, sb.String()) //nolint:errcheck
}

// Notice prints a status line.
func (d *Display) Notice(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prefix := ""
	if d.midLine {
		prefix = "\n"
		d.midLine = false
	}
	io.WriteString(d.out, prefix+"["+msg+"]\n") //nolint:errcheck
}

// Reporter logs session faults.
type Reporter struct {
	Log *util.Logger
}

// Report implements session.Reporter.
func (r Reporter) Report(src session.Source, err error) {
	r.Log.Error("%s: %v", src, err)
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r interface{}) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
