package session

import (
	"io"

	ncerr "gotalk/internal/errors"
	"gotalk/internal/metrics"
	"gotalk/util"
)

// inbound pulls chunks off the connection and hands them to the display.
type inbound struct {
	conn    io.Reader
	display Display
	report  func(Source, error)
	term    *Termination
	stats   *metrics.Collector
	log     *util.Logger
	bufSize int

	quit       quitDetector
	onPeerQuit func()
}

// run shows chunks until the peer closes, a read fails or the controller
// aborts the read. A stop for any cause but an interrupt keeps it reading
// so the peer can finish; the drain deadline bounds that wait.
func (w *inbound) run() {
	buf := make([]byte, w.bufSize)

	for w.term.Cause() != CauseInterrupt {
		n, err := w.conn.Read(buf)
		if n > 0 {
			w.stats.ChunkReceived(n)
			w.display.Show(buf[:n])
			if w.quit.feed(buf[:n]) {
				w.display.Notice("peer is leaving the conversation")
				w.onPeerQuit()
			}
		}

		switch {
		case err == nil:
		case ncerr.IsEOF(err):
			w.log.Verbose("peer closed its write side")
			w.term.Stop(CausePeerClosed)
			return
		case ncerr.IsInterrupted(err):
			w.log.Debug("read interrupted, retrying")
		case !w.term.Running():
			// The session already has its cause; anything the read
			// reports now is fallout from it.
			w.log.Debug("read ended during shutdown: %v", err)
			return
		default:
			w.report(SourceRead, err)
			w.term.Stop(CauseReadFault)
			return
		}
	}
}

// quitDetector spots lines starting with the quit directive in a byte
// stream cut into arbitrary chunks.
type quitDetector struct {
	directive string
	matched   int  // bytes of directive matched at the current line start
	midLine   bool // past the point where the directive could start
}

// feed consumes p and reports whether a line starting with the
// directive was completed inside it.
func (d *quitDetector) feed(p []byte) bool {
	if d.directive == "" {
		return false
	}
	found := false
	for _, b := range p {
		if b == '\n' {
			d.matched, d.midLine = 0, false
			continue
		}
		if d.midLine {
			continue
		}
		if b == d.directive[d.matched] {
			d.matched++
			if d.matched == len(d.directive) {
				found = true
				d.midLine = true
			}
			continue
		}
		d.midLine = true
	}
	return found
}
