// Package config defines the runtime configuration for gotalk and
// provides helpers for parsing ports.
package config

import (
	"fmt"
	"strconv"
	"time"

	ncerr "gotalk/internal/errors"
)

// Config holds every tuneable for a single gotalk session.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host      string // remote host (connect) or bind host (listen)
	Port      int    // remote port (connect) or listen port (listen)
	LocalPort int    // -p: listen port with -l, source port otherwise
	Listen    bool
	Timeout   time.Duration // dial timeout
	Retries   int           // extra dial attempts before giving up
	NoDNS     bool

	// ── Session ──────────────────────────────────────────────────────
	DrainTimeout time.Duration
	LineRate     float64 // outbound lines per second, 0 = unlimited
	BufSize      int
	PeerLabel    string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	Stats   bool
	DryRun  bool
}

// ListenPort returns the port the acceptor binds.
func (c *Config) ListenPort() int {
	if c.LocalPort > 0 {
		return c.LocalPort
	}
	return c.Port
}

// ParsePort accepts a decimal port in 1-65535.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Listen {
		if c.ListenPort() == 0 {
			return &ncerr.ConfigError{
				Field:   "port",
				Message: "listen mode requires a port",
				Hint:    "gotalk -l 5000  or  gotalk -l -p 5000",
			}
		}
		if c.LocalPort > 0 && c.Port > 0 && c.LocalPort != c.Port {
			return &ncerr.ConfigError{
				Field:   "port",
				Value:   c.LocalPort,
				Message: fmt.Sprintf("conflicts with positional port %d", c.Port),
			}
		}
		if c.Retries > 0 {
			return &ncerr.ConfigError{
				Field:   "retry",
				Value:   c.Retries,
				Message: "only applies when connecting",
			}
		}
	} else {
		if c.Host == "" {
			return &ncerr.ConfigError{
				Field:   "host",
				Message: "hostname is required",
				Hint:    "gotalk HOST PORT  (use --help for usage)",
			}
		}
		if c.Port == 0 {
			return &ncerr.ConfigError{Field: "port", Message: "destination port is required"}
		}
	}

	for _, p := range []struct {
		name string
		val  int
	}{{"port", c.Port}, {"port", c.LocalPort}} {
		if p.val < 0 || p.val > 65535 {
			return &ncerr.ConfigError{
				Field:   p.name,
				Value:   p.val,
				Message: "out of range 1-65535",
			}
		}
	}

	if c.Retries < 0 {
		return &ncerr.ConfigError{Field: "retry", Value: c.Retries, Message: "must not be negative"}
	}
	if c.LineRate < 0 {
		return &ncerr.ConfigError{Field: "rate", Value: c.LineRate, Message: "must not be negative"}
	}
	if c.BufSize < 0 {
		return &ncerr.ConfigError{Field: "buffer", Value: c.BufSize, Message: "must not be negative"}
	}
	return nil
}
