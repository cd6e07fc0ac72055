package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/prep/socketpair"

	ncerr "gotalk/internal/errors"
	"gotalk/internal/session"
	"gotalk/internal/transport"
	"gotalk/util"
)

func pair(t *testing.T) (transport.Conn, net.Conn) {
	t.Helper()
	a, b, err := socketpair.New("unix")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := transport.AsConn(a)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	return conn, b
}

// TestChat_Conversation verifies lines flow both ways and the banners
// frame the conversation.
func TestChat_Conversation(t *testing.T) {
	conn, peer := pair(t)

	received := make(chan string, 1)
	go func() {
		peer.Write([]byte("hello from peer\n")) //nolint:errcheck
		b, _ := io.ReadAll(peer)
		received <- string(b)
		peer.Close()
	}()

	var out, errOut bytes.Buffer
	chat := &Chat{
		PeerLabel: "bob",
		Stats:     true,
		Logger:    util.NewLogger(0),
		Stdin:     strings.NewReader("hi bob\n"),
		Stdout:    &out,
		Stderr:    &errOut,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := chat.Handle(ctx, conn); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if got := <-received; got != "hi bob\n" {
		t.Errorf("peer got %q", got)
	}

	s := out.String()
	for _, want := range []string{
		"[Type messages and press Enter. Command: /quit]\n",
		"bob: hello from peer\n",
		"[local exit, closed]\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}

	var snap struct {
		BytesOut int64 `json:"bytes_out"`
		LinesOut int64 `json:"lines_out"`
	}
	if err := json.Unmarshal(errOut.Bytes(), &snap); err != nil {
		t.Fatalf("stats: %v\n%s", err, errOut.String())
	}
	if snap.LinesOut != 1 || snap.BytesOut != int64(len("hi bob\n")) {
		t.Errorf("stats = %+v", snap)
	}
}

// TestChat_PeerDisconnect verifies a peer hang-up ends the chat without
// an error while the operator is idle.
func TestChat_PeerDisconnect(t *testing.T) {
	conn, peer := pair(t)
	peer.Close()

	r, w := io.Pipe()
	defer w.Close()

	var out bytes.Buffer
	chat := &Chat{PeerLabel: "peer", Stdin: r, Stdout: &out}

	if err := chat.Handle(context.Background(), conn); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(out.String(), "[peer disconnected, closed]") {
		t.Errorf("output = %q", out.String())
	}
}

type brokenConn struct {
	transport.Conn
}

func (brokenConn) Write([]byte) (int, error) {
	return 0, &net.OpError{Op: "write", Net: "unix", Err: os.NewSyscallError("write", syscall.EPIPE)}
}

// TestChat_Fault verifies a failed write surfaces as ErrSessionFault.
func TestChat_Fault(t *testing.T) {
	conn, _ := pair(t)

	var out, logs bytes.Buffer
	log := util.NewLogger(0)
	log.SetOutput(&logs)
	chat := &Chat{
		Options: session.Options{DrainTimeout: -1},
		Logger:  log,
		Stdin:   strings.NewReader("doomed\n"),
		Stdout:  &out,
	}

	err := chat.Handle(context.Background(), brokenConn{conn})
	if !errors.Is(err, ncerr.ErrSessionFault) {
		t.Fatalf("err = %v, want ErrSessionFault", err)
	}
	if !strings.Contains(logs.String(), "[ERR] write:") {
		t.Errorf("fault not logged: %q", logs.String())
	}
	if !strings.Contains(out.String(), "[connection error, closed]") {
		t.Errorf("output = %q", out.String())
	}
}

// TestChat_Interrupt verifies a cancelled context ends a quiet chat.
func TestChat_Interrupt(t *testing.T) {
	conn, _ := pair(t)

	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	chat := &Chat{Stdin: r, Stdout: io.Discard}

	done := make(chan error, 1)
	go func() { done <- chat.Handle(ctx, conn) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("interrupt should not be an error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("chat did not stop after interrupt")
	}
}
