package core

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	ncerr "gotalk/internal/errors"
	"gotalk/internal/session"
	"gotalk/internal/transport"
	"gotalk/util"
)

// TestListenMode_TCP verifies that ListenMode accepts one peer and runs
// the conversation with it.
func TestListenMode_TCP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	ready := make(chan net.Addr, 1)
	var out strings.Builder
	mode := &ListenMode{
		Acceptor: &transport.Acceptor{
			Address:  "127.0.0.1:0",
			OnListen: func(a net.Addr) { ready <- a },
		},
		Capability: testChat(strings.NewReader("welcome\n"), &out),
		Logger:     util.NewLogger(0),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mode.Run(ctx)
	}()

	addr := <-ready
	conn, err := net.DialTimeout("tcp", addr.String(), 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Write([]byte("test message\n")) //nolint:errcheck
	got, _ := io.ReadAll(conn)
	conn.Close()

	if string(got) != "welcome\n" {
		t.Errorf("client got %q", got)
	}

	select {
	case err := <-serverErr:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down in time")
	}
	if !strings.Contains(out.String(), "peer: test message\n") {
		t.Errorf("output = %q", out.String())
	}
}

// TestListenMode_Interrupt verifies an interrupt while waiting for a
// peer ends the mode quietly.
func TestListenMode_Interrupt(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	mode := &ListenMode{
		Acceptor:   &transport.Acceptor{Address: fmt.Sprintf("127.0.0.1:%d", port)},
		Capability: testChat(strings.NewReader(""), io.Discard),
		Logger:     util.NewLogger(0),
	}

	done := make(chan error, 1)
	go func() { done <- mode.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listen did not stop after cancel")
	}
}

// TestListenMode_PortInUse verifies a bind failure is reported.
func TestListenMode_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	rep := &setupReporter{}
	mode := &ListenMode{
		Acceptor:   &transport.Acceptor{Address: ln.Addr().String()},
		Capability: testChat(strings.NewReader(""), io.Discard),
		Logger:     util.NewLogger(0),
		Reporter:   rep,
	}

	err = mode.Run(context.Background())
	if !ncerr.Is(err, ncerr.ErrSetupFailed) {
		t.Fatalf("err = %v, want ErrSetupFailed", err)
	}
	if len(rep.sources) != 1 || rep.sources[0] != session.SourceSetup {
		t.Fatalf("reports = %v, want one setup report", rep.sources)
	}
	if !strings.Contains(rep.errs[0].Error(), "listen on "+ln.Addr().String()) {
		t.Errorf("reported %v", rep.errs[0])
	}
}
