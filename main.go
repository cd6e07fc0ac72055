// gotalk - a one-to-one terminal chat over a single TCP connection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gotalk/cmd"
	ncerr "gotalk/internal/errors"
)

// Exit statuses.
const (
	exitFailure = 1 // usage or setup error
	exitFault   = 2 // the conversation ended because the connection failed
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		cancel()
		// Setup failures were already logged with their detail.
		if ncerr.Is(err, ncerr.ErrSetupFailed) {
			os.Exit(exitFailure)
		}
		fmt.Fprintf(os.Stderr, "gotalk: %v\n", err)
		if ncerr.Is(err, ncerr.ErrSessionFault) {
			os.Exit(exitFault)
		}
		os.Exit(exitFailure)
	}
}
