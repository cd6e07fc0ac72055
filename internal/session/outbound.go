package session

import (
	"context"
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/time/rate"

	ncerr "gotalk/internal/errors"
	"gotalk/internal/metrics"
	"gotalk/util"
)

// halfCloseWriter is the outbound worker's view of the connection: it
// may write and shut down the write direction, never release the socket.
type halfCloseWriter interface {
	io.Writer
	CloseWrite() error
}

// outbound pulls operator lines and writes them to the connection.
type outbound struct {
	conn      halfCloseWriter
	input     Input
	report    func(Source, error)
	term      *Termination
	limiter   *rate.Limiter
	stats     *metrics.Collector
	log       *util.Logger
	directive string

	inputClosed atomic.Bool
}

func (w *outbound) run(ctx context.Context) {
	for w.term.Running() {
		line, err := w.input.ReadLine(ctx)
		if err != nil {
			switch {
			case ncerr.IsEOF(err):
				// The peer may still be talking, so the session keeps
				// running with only the read direction open.
				w.log.Verbose("end of input, closing write side")
				w.inputClosed.Store(true)
				w.halfClose()
			case ctx.Err() != nil || !w.term.Running():
				w.log.Debug("input wait cancelled by shutdown")
			default:
				w.report(SourceInput, err)
				w.term.Stop(CauseInputFault)
			}
			return
		}
		if !w.term.Running() {
			return
		}

		if strings.HasPrefix(line, w.directive) {
			w.quit(line)
			return
		}

		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
		}
		if err := w.send(line); err != nil {
			if ncerr.IsClosed(err) && !w.term.Running() {
				return
			}
			w.report(SourceWrite, err)
			w.term.Stop(CauseWriteFault)
			return
		}
	}
}

// quit stops the session, forwards the directive as a courtesy notice
// and shuts down the write direction.  Nothing is written afterwards.
func (w *outbound) quit(line string) {
	w.term.Stop(CauseQuit)
	w.log.Verbose("quit directive entered")
	if err := w.send(line); err != nil {
		w.log.Debug("quit notice not delivered: %v", err)
	}
	w.halfClose()
}

func (w *outbound) send(line string) error {
	n, err := io.WriteString(w.conn, line+"\n")
	if n > 0 {
		w.stats.LineSent(n)
	}
	return err
}

func (w *outbound) halfClose() {
	if err := w.conn.CloseWrite(); err != nil {
		w.log.Debug("half-close: %v", err)
	}
}
