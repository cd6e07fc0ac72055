package core

import (
	"context"
	"fmt"

	"gotalk/internal/capability"
	ncerr "gotalk/internal/errors"
	"gotalk/internal/retry"
	"gotalk/internal/session"
	"gotalk/internal/transport"
	"gotalk/util"
)

// ConnectMode dials the peer and runs a capability on the resulting
// connection (the "client" side).
type ConnectMode struct {
	Dialer     transport.Dialer
	Retry      *retry.Backoff // nil means a single attempt
	Capability capability.Capability
	Network    string
	Address    string
	Logger     *util.Logger
	Reporter   session.Reporter // receives dial failures; may be nil
}

// Run dials the remote address, retrying refused or timed-out attempts
// within the retry budget, then hands the connection to the capability.
// An interrupt before the connection is up ends Run without an error.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	conn, err := m.dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			m.Logger.Verbose("interrupted while connecting")
			return nil
		}
		return setupFailed(m.Reporter, fmt.Errorf("connect to %s: %w", m.Address, err))
	}

	m.Logger.Info("connected to %s", conn.RemoteAddr())
	return m.Capability.Handle(ctx, conn)
}

// setupFailed hands err to rep and marks it as a setup failure.
func setupFailed(rep session.Reporter, err error) error {
	if rep != nil {
		rep.Report(session.SourceSetup, err)
	}
	return fmt.Errorf("%w: %w", ncerr.ErrSetupFailed, err)
}

func (m *ConnectMode) dial(ctx context.Context) (transport.Conn, error) {
	b := m.Retry
	if b == nil {
		b = &retry.Backoff{MaxAttempts: 1}
	}

	var conn transport.Conn
	err := b.Do(ctx, func(attempt int) error {
		m.Logger.Verbose("connecting to %s (attempt %d)", m.Address, attempt)

		c, err := m.Dialer.Dial(ctx, m.Network, m.Address)
		if err != nil {
			werr := ncerr.Wrap("dial", m.Address, err)
			if !werr.Retryable || ctx.Err() != nil {
				return retry.Permanent(werr)
			}
			m.Logger.Verbose("%v", werr)
			return werr
		}

		conn, err = transport.AsConn(c)
		if err != nil {
			c.Close()
			return retry.Permanent(err)
		}
		return nil
	})
	return conn, err
}
