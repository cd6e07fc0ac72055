// Package capability defines what happens over an established
// connection.  A Capability gets a connection that is already open and
// owns it from then on; core modes only decide how the connection is
// obtained.
package capability

import (
	"context"

	"gotalk/internal/transport"
)

// Capability handles a single connection.  The only implementation is
// Chat, the interactive conversation.
type Capability interface {
	// Handle runs the capability against conn and releases it.  It
	// blocks until the conversation is over or ctx is cancelled.
	Handle(ctx context.Context, conn transport.Conn) error
}
