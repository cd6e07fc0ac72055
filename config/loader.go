package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the GOTALK_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := envInt("GOTALK_PORT"); v > 0 {
		cfg.LocalPort = v
	}
	if envBool("GOTALK_LISTEN") {
		cfg.Listen = true
	}
	if envBool("GOTALK_NO_DNS") {
		cfg.NoDNS = true
	}
	if v := envInt("GOTALK_TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}
	if v := envInt("GOTALK_RETRY"); v > 0 {
		cfg.Retries = v
	}

	// Session
	if v := envInt("GOTALK_DRAIN_TIMEOUT"); v > 0 {
		cfg.DrainTimeout = secondsDuration(v)
	}
	if v := envFloat("GOTALK_RATE"); v > 0 {
		cfg.LineRate = v
	}
	if v := os.Getenv("GOTALK_PEER_LABEL"); v != "" {
		cfg.PeerLabel = v
	}

	// Output
	if v := envInt("GOTALK_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
	if envBool("GOTALK_STATS") {
		cfg.Stats = true
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
