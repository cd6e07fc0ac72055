package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, environment variable loading and the session.

const (
	// DefaultBufSize is the largest chunk read from the peer at once.
	DefaultBufSize = 1024

	// DefaultQuitDirective is the line prefix that ends a conversation.
	DefaultQuitDirective = "/quit"

	// DefaultDrainTimeout is how long a stopping session waits for the
	// peer to close its side before aborting the pending read.
	DefaultDrainTimeout = 5 * time.Second

	// DefaultConnTimeout is the TCP dial timeout.
	DefaultConnTimeout = 10 * time.Second

	// DefaultRetryDelay is the first pause between dial attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps the pause between dial attempts.
	DefaultMaxRetryDelay = 10 * time.Second

	// DefaultRateBurst is how many lines may be sent back to back
	// before the line rate limit applies.
	DefaultRateBurst = 5

	// DefaultPeerLabel prefixes each line received from the peer.
	DefaultPeerLabel = "peer"
)
