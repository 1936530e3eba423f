package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/duesync/internal/formatter"
	"github.com/desertthunder/duesync/internal/models"
	"github.com/desertthunder/duesync/internal/repositories"
	"github.com/desertthunder/duesync/internal/shared"
	"github.com/desertthunder/duesync/internal/ui"
	"github.com/urfave/cli/v3"
)

type runView struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	DryRun     bool       `json:"dry_run"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func newRunView(run *models.Run) runView {
	return runView{
		ID:         run.ID(),
		Status:     string(run.Status()),
		DryRun:     run.DryRun(),
		Created:    run.Created(),
		Updated:    run.Updated(),
		Skipped:    run.Skipped(),
		Failed:     run.Failed(),
		Error:      run.ErrorMessage(),
		StartedAt:  run.StartedAt(),
		FinishedAt: run.FinishedAt(),
	}
}

// openHistory opens the journal for the history commands, which need one to be configured.
func (r *Runner) openHistory(cmd *cli.Command) (*repositories.RunRepository, func(), error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	repo, closer, ok, err := r.journal(config)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		closer()
		return nil, nil, fmt.Errorf("%w: set database.path and run 'duesync setup database' to record runs", shared.ErrMissingConfig)
	}
	return repo, closer, nil
}

// HistoryList lists recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, closer, err := r.openHistory(cmd)
	if err != nil {
		return err
	}
	defer closer()

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	runs, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newRunView(run))
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(views) == 0 {
		r.writePlain("No runs recorded\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("%d runs", len(views)))
	for _, v := range views {
		mode := ""
		if v.DryRun {
			mode = " (dry run)"
		}
		line := fmt.Sprintf("%s  %s  %-9s +%d .%d -%d !%d%s",
			v.ID, v.StartedAt.Local().Format(time.DateTime), v.Status, v.Created, v.Updated, v.Skipped, v.Failed, mode)
		switch models.RunStatus(v.Status) {
		case models.RunSucceeded:
			r.writePlain("%s\n", line)
		default:
			r.writePlain("%s\n", ui.Styles.Failed("%s", line))
		}
	}
	return nil
}

// HistoryShow prints (or writes as a report) the actions of one run.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run ID is required", shared.ErrMissingArgument)
	}

	repo, closer, err := r.openHistory(cmd)
	if err != nil {
		return err
	}
	defer closer()

	run, err := repo.Get(id)
	if err != nil {
		return err
	}
	report := formatter.ReportFromRun(run)

	if path := cmd.String("report"); path != "" {
		if err := formatter.WriteReport(report, path); err != nil {
			return err
		}
		r.writePlain("Report written to %s\n", path)
		return nil
	}

	text, err := formatter.ReportToText(report)
	if err != nil {
		return err
	}
	r.writePlain("Status: %s\n", run.Status())
	if msg := run.ErrorMessage(); msg != "" {
		r.writePlain("Error: %s\n", msg)
	}
	r.writePlain("%s", text)
	return nil
}

// HistoryPrune deletes all but the most recent runs.
func (r *Runner) HistoryPrune(ctx context.Context, cmd *cli.Command) error {
	keep := int(cmd.Int("keep"))

	repo, closer, err := r.openHistory(cmd)
	if err != nil {
		return err
	}
	defer closer()

	removed, err := repo.Prune(keep)
	if err != nil {
		return err
	}

	r.logger.Info("pruned journal", "removed", removed, "kept", keep)
	r.writePlain("✓ Removed %d runs\n", removed)
	return nil
}
