// Package transport provides the connection abstraction used by a chat
// session and the two ways of obtaining one: dialing a peer (connector)
// or accepting exactly one peer (acceptor).  What flows over the
// connection is the session layer's job.
package transport

import (
	"context"
	"fmt"
	"net"
)

// Dialer opens outbound network connections.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer.
	// Stateless dialers return nil.
	Close() error
}

// Conn is a full-duplex byte stream whose write direction can be shut
// down independently of its read direction.  *net.TCPConn and
// *net.UnixConn satisfy it.
type Conn interface {
	net.Conn

	// CloseWrite shuts down the writing half.  The peer reads EOF
	// while this side can still receive.
	CloseWrite() error
}

// AsConn checks that c supports half-close.
func AsConn(c net.Conn) (Conn, error) {
	hc, ok := c.(Conn)
	if !ok {
		return nil, fmt.Errorf("%T does not support half-close", c)
	}
	return hc, nil
}
