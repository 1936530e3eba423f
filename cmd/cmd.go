package main

import (
	"github.com/desertthunder/duesync/internal/shared"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// syncCommand runs one synchronization pass
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Create or update Todoist tasks for upcoming Canvas assignments",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Decide create or update without writing to Todoist",
			},
			&cli.StringFlag{
				Name:  "on-error",
				Usage: "Failure policy for a single assignment (abort or continue); overrides sync.on_error",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write a run report (.csv, .md, or plain text)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at debug level and show skipped assignments",
			},
		},
		Action: r.Sync,
	}
}

// coursesCommand lists the active courses the sync would walk
func coursesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "courses",
		Usage:  "List active Canvas courses with their derived course codes",
		Flags:  append([]cli.Flag{configFlag()}, outputFlags()...),
		Action: r.Courses,
	}
}

// assignmentsCommand lists a course's assignments with the filter verdict
func assignmentsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "assignments",
		Usage: "List assignments for a course and whether they would be synced",
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:     "course",
				Usage:    "Canvas course ID",
				Required: true,
			},
		}, outputFlags()...),
		Action: r.Assignments,
	}
}

// tasksCommand lists the existing-task index
func tasksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tasks",
		Usage:  "List Todoist tasks in the target project",
		Flags:  append([]cli.Flag{configFlag()}, outputFlags()...),
		Action: r.Tasks,
	}
}

// configCommand handles the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.ConfigInit,
			},
		},
	}
}

// historyCommand reads the run journal
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect the run journal",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, newest first",
				Flags: append([]cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to return",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show runs with this status (succeeded, partial, aborted, failed)",
					},
				}, outputFlags()...),
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show the actions of one run",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "report",
						Aliases: []string{"o"},
						Usage:   "Write the run as a report file instead of printing it",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "prune",
				Usage: "Delete all but the most recent runs",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "keep",
						Usage: "Number of runs to keep",
						Value: 50,
					},
				},
				Action: r.HistoryPrune,
			},
		},
	}
}

// setupCommand handles setup operations for the journal database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the journal database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "path",
						Usage: "Database path (overrides database.path)",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// onErrorPolicy validates the --on-error flag value
func onErrorPolicy(v string) (string, error) {
	switch v {
	case shared.OnErrorAbort, shared.OnErrorContinue:
		return v, nil
	default:
		return "", shared.ErrInvalidFlag
	}
}
