package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/duesync/internal/formatter"
	"github.com/desertthunder/duesync/internal/models"
	"github.com/desertthunder/duesync/internal/services"
	"github.com/desertthunder/duesync/internal/shared"
	"github.com/desertthunder/duesync/internal/tasks"
	"github.com/desertthunder/duesync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Sync runs one Canvas → Todoist synchronization pass.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	verbose := cmd.Bool("verbose")
	if verbose {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if v := cmd.String("on-error"); v != "" {
		policy, err := onErrorPolicy(v)
		if err != nil {
			return fmt.Errorf("%w: --on-error must be %q or %q, got %q", err, shared.OnErrorAbort, shared.OnErrorContinue, v)
		}
		config.Sync.OnError = policy
	}

	source, sink, err := r.connect(ctx, config)
	if err != nil {
		return err
	}

	runID := shared.GenerateID()
	logger := shared.WithLogger(r.logger, "run", runID)
	startedAt := r.now()

	opts := tasks.OptionsFromConfig(config, logger)
	opts.DryRun = cmd.Bool("dry-run")
	opts.Now = r.now

	logger.Info("starting sync", "project", opts.ProjectID, "on_error", opts.OnError, "dry_run", opts.DryRun)
	if opts.DryRun {
		r.writePlain("%s\n", ui.Styles.Help("Dry run: no tasks will be created or updated"))
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.renderProgress(update, verbose)
		}
	}()

	engine := tasks.NewSyncEngine(source, sink, opts)
	result, runErr := engine.Run(ctx, progressCh)
	close(progressCh)
	<-done

	if result != nil {
		r.writeSummary(result)
		r.recordRun(config, logger, runID, startedAt, result, runErr)

		if path := cmd.String("report"); path != "" {
			if err := formatter.WriteReport(reportFromResult(runID, startedAt, result), path); err != nil {
				if runErr == nil {
					return err
				}
				logger.Error("failed to write report", "path", path, "error", err)
			} else {
				r.writePlain("Report written to %s\n", path)
			}
		}
	}

	if runErr != nil {
		if services.IsUnauthorized(runErr) {
			logger.Warn("credentials were rejected; check the Canvas and Todoist API keys")
		}
		return runErr
	}
	logger.Info("sync complete")
	return nil
}

// renderProgress prints one progress update. Skipped assignments and per-course fetches only show with --verbose.
func (r *Runner) renderProgress(update tasks.ProgressUpdate, verbose bool) {
	switch update.Phase {
	case tasks.FetchIndex, tasks.FetchCourses:
		r.writePlain("%s\n", update.Message)
	case tasks.FetchAssignments:
		if verbose {
			r.writePlain("%s\n", update.Message)
		}
	case tasks.CreateTask:
		if update.DryRun {
			r.writePlain("%s\n", ui.Styles.Added("%s", update.Message))
		} else {
			r.writePlain("%s\n", ui.Styles.Added("%s Successfully", update.Message))
		}
	case tasks.UpdateTask:
		if update.DryRun {
			r.writePlain("%s\n", ui.Styles.Updated("%s", update.Message))
		} else {
			r.writePlain("%s\n", ui.Styles.Updated("%s Successfully", update.Message))
		}
	case tasks.ItemFailed, tasks.CourseFailed:
		r.writePlain("%s\n", ui.Styles.Failed("%s", update.Message))
	case tasks.SkipCourse:
		r.writePlain("%s\n", ui.Styles.Skipped("%s", update.Message))
	case tasks.SkipAssignment:
		if verbose {
			r.writePlain("%s\n", ui.Styles.Skipped("%s", update.Message))
		}
	}
}

func (r *Runner) writeSummary(result *tasks.SyncResult) {
	title, created, updated := "Sync Complete", "Created", "Updated"
	if result.DryRun {
		title, created, updated = "Dry Run Complete", "Would create", "Would update"
	}

	r.writePlain("\n")
	r.writePlainHeader(title)
	r.writePlain("Courses: %d (%d excluded, %d failed)\n", result.Courses, result.ExcludedCourses, result.FailedCourses)
	r.writePlain("%s: %d\n", created, result.Created)
	r.writePlain("%s: %d\n", updated, result.Updated)
	r.writePlain("Skipped: %d (%d past due, %d without due date)\n", result.Skipped(), result.SkippedPastDue, result.SkippedNoDue)
	r.writePlain("Failed: %d\n", result.Failed)
}

// recordRun writes the run to the journal when one is configured. Journal errors never fail the sync.
func (r *Runner) recordRun(config *shared.Config, logger *log.Logger, runID string, startedAt time.Time, result *tasks.SyncResult, runErr error) {
	repo, closer, ok, err := r.journal(config)
	defer closer()
	if err != nil {
		logger.Warn("run not recorded", "error", err)
		return
	}
	if !ok {
		return
	}

	run := models.NewRun(startedAt, result.DryRun)
	run.SetID(runID)
	run.SetCounts(result.Created, result.Updated, result.Skipped(), result.Failed)
	run.SetActions(result.Actions)
	run.Finish(runStatus(runErr), r.now(), runErr)

	if err := repo.Create(run); err != nil {
		logger.Warn("run not recorded", "error", err)
		return
	}
	logger.Debug("run recorded", "actions", len(result.Actions))
}

// runStatus maps the error returned by the engine to a journal status.
func runStatus(err error) models.RunStatus {
	switch {
	case err == nil:
		return models.RunSucceeded
	case errors.Is(err, shared.ErrPartialSync):
		return models.RunPartial
	case errors.Is(err, shared.ErrSyncAborted):
		return models.RunAborted
	default:
		return models.RunFailed
	}
}

func reportFromResult(runID string, startedAt time.Time, result *tasks.SyncResult) formatter.Report {
	return formatter.Report{
		RunID:     runID,
		StartedAt: startedAt,
		DryRun:    result.DryRun,
		Created:   result.Created,
		Updated:   result.Updated,
		Skipped:   result.Skipped(),
		Failed:    result.Failed,
		Actions:   result.Actions,
	}
}
