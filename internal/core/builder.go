package core

import (
	"gotalk/config"
	"gotalk/internal/capability"
	"gotalk/internal/console"
	"gotalk/internal/retry"
	"gotalk/internal/session"
	"gotalk/internal/transport"
	"gotalk/util"
)

// Build constructs the appropriate Mode from the given configuration.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	if cfg.Listen {
		return buildListen(cfg, logger)
	}
	return buildConnect(cfg, logger)
}

// ── mode builders ────────────────────────────────────────────────────

func buildConnect(cfg *config.Config, logger *util.Logger) (Mode, error) {
	address, err := util.ResolveAddr(cfg.Host, cfg.Port, cfg.NoDNS)
	if err != nil {
		return nil, err
	}

	return &ConnectMode{
		Dialer:     buildDialer(cfg),
		Retry:      buildRetry(cfg),
		Capability: buildChat(cfg, logger),
		Network:    "tcp",
		Address:    address,
		Logger:     logger,
		Reporter:   console.Reporter{Log: logger},
	}, nil
}

func buildListen(cfg *config.Config, logger *util.Logger) (Mode, error) {
	return &ListenMode{
		Acceptor:   &transport.Acceptor{Address: util.FormatAddr(cfg.Host, cfg.ListenPort())},
		Capability: buildChat(cfg, logger),
		Logger:     logger,
		Reporter:   console.Reporter{Log: logger},
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

func buildDialer(cfg *config.Config) transport.Dialer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultConnTimeout
	}
	return &transport.TCPDialer{
		Timeout:   timeout,
		LocalPort: cfg.LocalPort,
	}
}

// buildRetry returns the dial retry budget: one attempt plus
// cfg.Retries more.
func buildRetry(cfg *config.Config) *retry.Backoff {
	return &retry.Backoff{
		InitialDelay: config.DefaultRetryDelay,
		MaxDelay:     config.DefaultMaxRetryDelay,
		Multiplier:   2.0,
		MaxAttempts:  cfg.Retries + 1,
		Jitter:       true,
	}
}

func buildChat(cfg *config.Config, logger *util.Logger) *capability.Chat {
	label := cfg.PeerLabel
	if label == "" {
		label = config.DefaultPeerLabel
	}
	return &capability.Chat{
		Options: session.Options{
			BufSize:      cfg.BufSize,
			DrainTimeout: cfg.DrainTimeout,
			LineRate:     cfg.LineRate,
		},
		PeerLabel: label,
		Stats:     cfg.Stats,
		Logger:    logger,
	}
}
