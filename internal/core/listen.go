package core

import (
	"context"
	"fmt"
	"net"

	"gotalk/internal/capability"
	"gotalk/internal/session"
	"gotalk/internal/transport"
	"gotalk/util"
)

// ListenMode waits for exactly one peer and runs a capability on that
// connection (the "server" side).  The listener is gone by the time the
// conversation starts.
type ListenMode struct {
	Acceptor   *transport.Acceptor
	Capability capability.Capability
	Logger     *util.Logger
	Reporter   session.Reporter // receives bind and accept failures; may be nil
}

// Run accepts one peer and hands the connection to the capability.  An
// interrupt while waiting ends Run without an error.
func (m *ListenMode) Run(ctx context.Context) error {
	acc := *m.Acceptor
	acc.OnListen = func(addr net.Addr) {
		m.Logger.Info("waiting for a connection on %s", addr)
		if m.Acceptor.OnListen != nil {
			m.Acceptor.OnListen(addr)
		}
	}

	conn, err := acc.Accept(ctx)
	if err != nil {
		if ctx.Err() != nil {
			m.Logger.Verbose("interrupted while waiting for a peer")
			return nil
		}
		return setupFailed(m.Reporter, fmt.Errorf("listen on %s: %w", m.Acceptor.Address, err))
	}

	m.Logger.Info("connection from %s", conn.RemoteAddr())
	return m.Capability.Handle(ctx, conn)
}
