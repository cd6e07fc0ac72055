// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"gotalk/config"
	"gotalk/internal/core"
	"gotalk/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X gotalk/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// output receives help, version and dry-run text.
var output io.Writer = os.Stderr //nolint:gochecknoglobals

// Execute parses args and runs the selected gotalk mode.
func Execute(ctx context.Context, args []string) error {
	cfg := &config.Config{
		DrainTimeout: config.DefaultDrainTimeout,
		PeerLabel:    config.DefaultPeerLabel,
		BufSize:      config.DefaultBufSize,
	}
	// Environment first so that flags, whose defaults are taken from
	// cfg, override it.
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("gotalk", flag.ContinueOnError)
	fs.SetOutput(output)

	// ── connection ───────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Wait for the peer to connect")
	fs.IntVarP(&cfg.LocalPort, "port", "p", cfg.LocalPort, "Listen port (with -l) or local source port")
	fs.BoolVarP(&cfg.NoDNS, "no-dns", "n", cfg.NoDNS, "Numeric-only, no DNS resolution")
	fs.IntVar(&cfg.Retries, "retry", cfg.Retries, "Retry a refused connect up to N more times")

	timeoutSec := int(cfg.Timeout / time.Second)
	fs.IntVarP(&timeoutSec, "timeout", "w", timeoutSec, "Connect timeout in seconds")

	// ── session ──────────────────────────────────────────────────
	fs.DurationVar(&cfg.DrainTimeout, "drain-timeout", cfg.DrainTimeout, "How long to wait for the peer to hang up after we stop")
	fs.Float64Var(&cfg.LineRate, "rate", cfg.LineRate, "Maximum lines sent per second (0 = unlimited)")
	fs.StringVar(&cfg.PeerLabel, "peer-label", cfg.PeerLabel, "Prefix for lines received from the peer")
	fs.IntVar(&cfg.BufSize, "buffer", cfg.BufSize, "Read buffer size in bytes")
	_ = fs.MarkHidden("buffer")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print traffic statistics as JSON on exit")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the configuration and exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(output, "gotalk %s\n", version)
		return nil
	}

	if timeoutSec > 0 {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Connection banners are informational and shown by default; each
	// -v raises the level from there.
	logger := util.NewLogger(cfg.Verbose + 1)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		printPlan(cfg)
		return nil
	}

	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func parsePositional(cfg *config.Config, remaining []string) error {
	if cfg.Listen {
		switch len(remaining) {
		case 0: // gotalk -l -p PORT
		case 1: // gotalk -l PORT
			port, err := config.ParsePort(remaining[0])
			if err != nil {
				return fmt.Errorf("port: %w", err)
			}
			cfg.Port = port
		case 2: // gotalk -l BIND_HOST PORT
			cfg.Host = remaining[0]
			port, err := config.ParsePort(remaining[1])
			if err != nil {
				return fmt.Errorf("port: %w", err)
			}
			cfg.Port = port
		default:
			return fmt.Errorf("too many arguments for listen mode")
		}
		return nil
	}

	// Connect mode: host port
	switch len(remaining) {
	case 0:
		return fmt.Errorf("hostname required (use --help for usage)")
	case 1:
		return fmt.Errorf("port required")
	case 2:
	default:
		return fmt.Errorf("too many arguments: a conversation has exactly one peer")
	}
	cfg.Host = remaining[0]
	port, err := config.ParsePort(remaining[1])
	if err != nil {
		return fmt.Errorf("port %q: %w", remaining[1], err)
	}
	cfg.Port = port
	return nil
}

func printPlan(cfg *config.Config) {
	if cfg.Listen {
		fmt.Fprintf(output, "would listen on %s for one peer\n",
			util.FormatAddr(cfg.Host, cfg.ListenPort()))
	} else {
		fmt.Fprintf(output, "would connect to %s (%d attempt(s))\n",
			util.FormatAddr(cfg.Host, cfg.Port), cfg.Retries+1)
	}
	fmt.Fprintf(output, "drain timeout %s, peer label %q\n", cfg.DrainTimeout, cfg.PeerLabel)
	if cfg.LineRate > 0 {
		fmt.Fprintf(output, "outbound rate %.1f lines/s\n", cfg.LineRate)
	}
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(output, `gotalk – one-to-one terminal chat over TCP v%s

Usage:
  gotalk [options] <host> <port>              Connect to a waiting peer
  gotalk -l [options] <port>                  Wait for a peer
  gotalk -l -p <port> [options]               Wait for a peer

Type a line and press Enter to send it.  A line starting with /quit
ends the conversation; so does Ctrl-D or Ctrl-C.

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(output, `
Examples:
  gotalk -l 5000                              Wait on port 5000
  gotalk 192.168.1.20 5000                    Talk to that peer
  gotalk --retry 5 chat.example.com 5000      Keep trying while it starts
  echo "hello" | gotalk host.example.com 5000 Send one line and hang up
`)
}
