// Command duesync copies upcoming Canvas assignment due dates into a Todoist project.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/duesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Process exit codes. Schedulers can tell a tracker outage apart from a partial run.
const (
	exitOK               = 0
	exitError            = 1
	exitIndexUnavailable = 2
	exitAborted          = 3
	exitPartial          = 4
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		logger.Error("application error", "error", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "duesync",
		Usage:    "Sync Canvas assignment due dates into Todoist",
		Version:  "0.1.0",
		Writer:   r.output,
		Commands: r.register(),
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, shared.ErrIndexUnavailable):
		return exitIndexUnavailable
	case errors.Is(err, shared.ErrSyncAborted):
		return exitAborted
	case errors.Is(err, shared.ErrPartialSync):
		return exitPartial
	default:
		return exitError
	}
}
