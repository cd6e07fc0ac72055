package capability

import (
	"context"
	"fmt"
	"io"
	"os"

	"gotalk/internal/console"
	"gotalk/internal/metrics"
	"gotalk/internal/session"
	"gotalk/internal/transport"
	"gotalk/util"
)

// Chat runs a line-oriented conversation between the local operator
// and the peer.
type Chat struct {
	Options   session.Options
	PeerLabel string
	Stats     bool // print a JSON traffic snapshot when the session ends
	Logger    *util.Logger

	// Stdin/Stdout/Stderr default to the process streams when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (c *Chat) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

func (c *Chat) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *Chat) stderr() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}

// Handle runs one session on conn and returns ErrSessionFault if it
// ended because an I/O operation failed.
func (c *Chat) Handle(ctx context.Context, conn transport.Conn) error {
	stdin, stdout := c.stdin(), c.stdout()
	log := c.Logger
	if log == nil {
		log = util.NewLogger(0)
	}

	input, err := console.NewInput(stdin, stdout)
	if err != nil {
		conn.Close()
		return fmt.Errorf("console: %w", err)
	}
	defer input.Close()

	opts := c.Options
	opts.Logger = log
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	display := console.NewDisplay(stdout, c.PeerLabel, console.IsTerminal(stdin))
	sess := session.New(conn, input, display, console.Reporter{Log: log}, opts)

	display.Notice(fmt.Sprintf("Type messages and press Enter. Command: %s", sess.QuitDirective()))

	res := sess.Run(ctx)

	display.Notice(fmt.Sprintf("%s, closed", res.Outcome()))
	log.Verbose("%s", opts.Metrics.Summary())
	if c.Stats {
		fmt.Fprintln(c.stderr(), opts.Metrics.JSON())
	}
	return res.Err()
}
