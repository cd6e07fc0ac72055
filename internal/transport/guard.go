package transport

import (
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Guard wraps a Conn owned by a session.  Reads and writes pass
// straight through; the closing operations are idempotent so that
// concurrent shutdown paths can never close the socket twice.
type Guard struct {
	conn Conn

	writeOnce   sync.Once
	writeErr    error
	writeClosed atomic.Bool

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool

	aborted atomic.Bool
}

// NewGuard takes ownership of c.
func NewGuard(c Conn) *Guard {
	return &Guard{conn: c}
}

func (g *Guard) Read(p []byte) (int, error)  { return g.conn.Read(p) }
func (g *Guard) Write(p []byte) (int, error) { return g.conn.Write(p) }

// RemoteAddr returns the peer's address.
func (g *Guard) RemoteAddr() net.Addr { return g.conn.RemoteAddr() }

// CloseWrite half-closes the connection.  Only the first call reaches
// the socket; later calls return the first result.
func (g *Guard) CloseWrite() error {
	g.writeOnce.Do(func() {
		g.writeErr = g.conn.CloseWrite()
		g.writeClosed.Store(true)
	})
	return g.writeErr
}

// WriteClosed reports whether CloseWrite has been called.
func (g *Guard) WriteClosed() bool { return g.writeClosed.Load() }

// Abort unblocks a Read or Write parked on the connection without
// releasing it; the pending call fails with a deadline error.
// Connections that do not support deadlines are closed instead.
func (g *Guard) Abort() {
	if !g.aborted.CompareAndSwap(false, true) {
		return
	}
	if err := g.conn.SetDeadline(time.Now()); err != nil {
		g.Close() //nolint:errcheck
	}
}

// Aborted reports whether Abort has been called.
func (g *Guard) Aborted() bool { return g.aborted.Load() }

// Close releases the connection exactly once.
func (g *Guard) Close() error {
	g.closeOnce.Do(func() {
		g.closeErr = g.conn.Close()
		g.closed.Store(true)
	})
	return g.closeErr
}

// Closed reports whether the connection has been released.
func (g *Guard) Closed() bool { return g.closed.Load() }
