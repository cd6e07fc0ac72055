package util

import (
	"fmt"
	"net"
	"strconv"

	ncerr "gotalk/internal/errors"
)

// ResolveAddr builds the peer's host:port.  With noDNS the host must
// already be a numeric IP; nothing is looked up either way, the dialer
// resolves names itself.
func ResolveAddr(host string, port int, noDNS bool) (string, error) {
	if noDNS && net.ParseIP(host) == nil {
		return "", &ncerr.ConfigError{
			Field:   "no-dns",
			Value:   host,
			Message: "host must be a numeric IP when DNS is off",
			Hint:    "drop -n or give the peer's IP address",
		}
	}
	return FormatAddr(host, port), nil
}

// FormatAddr returns "host:port".  An empty host means every local
// address, as used by the acceptor.
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// FindFreePort returns an available TCP port on 127.0.0.1.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
