package shared

import (
	"errors"
	"fmt"
)

var (
	// Playlist source & sink errors
	ErrFetchFailed       = fmt.Errorf("fetch failed")
	ErrSourceUnavailable = fmt.Errorf("source unavailable")
	ErrSinkUnavailable   = fmt.Errorf("sink unavailable")

	// Settings & configuration errors
	ErrInvalidSettings = fmt.Errorf("invalid settings")
	ErrMissingConfig   = fmt.Errorf("configuration not found")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")

	// Persistence errors
	ErrRunNotFound = fmt.Errorf("run not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrCanceled        = fmt.Errorf("canceled by user")
)

// Process exit codes, one per error kind.
const (
	ExitOK = iota
	ExitFailure
	ExitUsage
	ExitFetchFailed
	ExitSourceUnavailable
	ExitInvalidSettings
	ExitSinkUnavailable
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrFetchFailed):
		return ExitFetchFailed
	case errors.Is(err, ErrSourceUnavailable):
		return ExitSourceUnavailable
	case errors.Is(err, ErrInvalidSettings):
		return ExitInvalidSettings
	case errors.Is(err, ErrSinkUnavailable):
		return ExitSinkUnavailable
	case errors.Is(err, ErrMissingArgument), errors.Is(err, ErrInvalidArgument):
		return ExitUsage
	case errors.Is(err, ErrCanceled):
		return ExitOK
	default:
		return ExitFailure
	}
}
