package session

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prep/socketpair"

	"gotalk/internal/transport"
)

// chanInput yields the lines sent on it; closing it is end of input.
type chanInput chan string

func (c chanInput) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// errInput fails every read.
type errInput struct{ err error }

func (e errInput) ReadLine(context.Context) (string, error) { return "", e.err }

// recordDisplay collects everything shown.
type recordDisplay struct {
	mu      sync.Mutex
	shown   strings.Builder
	notices []string
}

func (d *recordDisplay) Show(p []byte) {
	d.mu.Lock()
	d.shown.Write(p)
	d.mu.Unlock()
}

func (d *recordDisplay) Notice(msg string) {
	d.mu.Lock()
	d.notices = append(d.notices, msg)
	d.mu.Unlock()
}

func (d *recordDisplay) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shown.String()
}

func (d *recordDisplay) Notices() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.notices...)
}

// waitFor polls until the display holds want.
func (d *recordDisplay) waitFor(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d.String() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("display = %q, want %q", d.String(), want)
}

type report struct {
	src Source
	err error
}

// recordReporter collects reported faults.
type recordReporter struct {
	mu      sync.Mutex
	reports []report
}

func (r *recordReporter) Report(src Source, err error) {
	r.mu.Lock()
	r.reports = append(r.reports, report{src, err})
	r.mu.Unlock()
}

func (r *recordReporter) Reports() []report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]report(nil), r.reports...)
}

// countingConn counts calls to Close.
type countingConn struct {
	transport.Conn
	mu     sync.Mutex
	closes int
}

func (c *countingConn) Close() error {
	c.mu.Lock()
	c.closes++
	c.mu.Unlock()
	return c.Conn.Close()
}

func (c *countingConn) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// connPair returns our side of a connected stream pair, wrapped to count
// closes, and the peer's side.
func connPair(t *testing.T) (*countingConn, transport.Conn) {
	t.Helper()
	a, b, err := socketpair.New("unix")
	if err != nil {
		t.Fatal(err)
	}
	local, err := transport.AsConn(a)
	if err != nil {
		t.Fatal(err)
	}
	peer, err := transport.AsConn(b)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { peer.Close() })
	return &countingConn{Conn: local}, peer
}

// runAsync starts s.Run and returns a channel carrying its result.
func runAsync(ctx context.Context, s *Session) <-chan Result {
	ch := make(chan Result, 1)
	go func() { ch <- s.Run(ctx) }()
	return ch
}

func waitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(3 * time.Second):
		t.Fatal("session did not close")
		return Result{}
	}
}
