package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/iptvx/internal/shared"
)

func main() {
	os.Exit(run(os.Args))
}

// run executes the CLI and returns the process exit code.
func run(args []string) int {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newApp(runner).Run(ctx, args)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrCanceled):
		logger.Warn("canceled")
	default:
		logger.Error("application error", "error", err)
	}
	return shared.ExitCode(err)
}
