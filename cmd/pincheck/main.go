// Command pincheck checks storefront delivery serviceability for Indian
// pincodes over the encrypted lookup API.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheMichaelB/pincheck/internal/models"
)

// Exit codes
const (
	exitOK             = 0
	exitFailure        = 1
	exitInvalidInput   = 2
	exitNotServiceable = 3
	exitTransport      = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closeErr := closeClient(); err == nil {
		err = closeErr
	}
	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			printError("%v", err)
		}
	}

	stop()
	os.Exit(exitCode(err))
}

// reportedError marks a failure the command already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, models.ErrInvalidInput):
		return exitInvalidInput
	case errors.Is(err, models.ErrPincodeNotServiceable):
		return exitNotServiceable
	case errors.Is(err, models.ErrTransport):
		return exitTransport
	default:
		return exitFailure
	}
}
