package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	ncerr "gotalk/internal/errors"
)

// TCPDialer establishes plain TCP connections, optionally binding to a
// specific source port.
type TCPDialer struct {
	Timeout   time.Duration
	LocalPort int // optional source-port binding (0 = ephemeral)
}

// Dial connects to address over TCP.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}

	if d.LocalPort > 0 {
		local := fmt.Sprintf(":%d", d.LocalPort)
		a, err := net.ResolveTCPAddr(network, local)
		if err != nil {
			return nil, fmt.Errorf("resolve local addr: %w", err)
		}
		dialer.LocalAddr = a
	}

	return dialer.DialContext(ctx, network, address)
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }

// Acceptor waits for exactly one peer on a local address.  The
// listening socket is closed as soon as that peer is accepted, so a
// second caller is refused rather than queued.
type Acceptor struct {
	Address string // ":port" or "host:port"

	// OnListen, if set, is called with the bound address once the
	// listener is up.
	OnListen func(net.Addr)
}

// Accept listens, accepts one connection and returns it.  Cancelling
// ctx while waiting aborts the accept.
func (a *Acceptor) Accept(ctx context.Context) (Conn, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", a.Address)
	if err != nil {
		return nil, ncerr.Wrap("listen", a.Address, err)
	}
	defer ln.Close()

	if a.OnListen != nil {
		a.OnListen(ln.Addr())
	}

	// Shut the listener down when the context expires.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	c, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ncerr.Wrap("accept", a.Address, ctx.Err())
		}
		return nil, ncerr.Wrap("accept", a.Address, err)
	}

	conn, err := AsConn(c)
	if err != nil {
		c.Close()
		return nil, ncerr.Wrap("accept", a.Address, err)
	}
	return conn, nil
}
