package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/duesync/internal/models"
	"github.com/desertthunder/duesync/internal/shared"
)

const runColumns = `id, status, dry_run, created, updated, skipped, failed, error, started_at, finished_at, created_at, updated_at`

// RunRepository implements models.Repository[*models.Run] for the sync journal.
//
// Actions are stored alongside their run and removed with it.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run and its actions with a generated ID
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	if run.ID() != "" {
		id = run.ID()
	}

	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := withTx(r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(query,
			id,
			string(run.Status()),
			run.DryRun(),
			run.Created(),
			run.Updated(),
			run.Skipped(),
			run.Failed(),
			run.ErrorMessage(),
			run.StartedAt().UTC(),
			nullTime(run.FinishedAt()),
			run.CreatedAt().UTC(),
			run.UpdatedAt().UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		return insertActions(tx, id, run.Actions())
	})
	if err != nil {
		return err
	}

	run.SetID(id)
	return nil
}

// Get retrieves a run and its actions by ID
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	actions, err := r.Actions(id)
	if err != nil {
		return nil, err
	}
	run.SetActions(actions)
	return run, nil
}

// Update stores the status, counters, and actions of an existing run
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET status = ?, created = ?, updated = ?, skipped = ?, failed = ?, error = ?, finished_at = ?, updated_at = ?
		WHERE id = ?
	`

	return withTx(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(query,
			string(run.Status()),
			run.Created(),
			run.Updated(),
			run.Skipped(),
			run.Failed(),
			run.ErrorMessage(),
			nullTime(run.FinishedAt()),
			now.UTC(),
			run.ID(),
		)
		if err != nil {
			return fmt.Errorf("failed to update run: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
		}

		if _, err := tx.Exec(`DELETE FROM run_actions WHERE run_id = ?`, run.ID()); err != nil {
			return fmt.Errorf("failed to clear run actions: %w", err)
		}
		return insertActions(tx, run.ID(), run.Actions())
	})
}

// Delete removes a run and, through the foreign key, its actions
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List retrieves runs newest first. Supported criteria: "status" (string or
// [models.RunStatus]), "dry_run" (bool), and "limit" (int). Actions are not loaded.
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1 = 1`
	args := []any{}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.RunStatus:
		if status != "" {
			query += " AND status = ?"
			args = append(args, string(status))
		}
	}

	if dryRun, ok := criteria["dry_run"].(bool); ok {
		query += " AND dry_run = ?"
		args = append(args, dryRun)
	}

	query += " ORDER BY started_at DESC, rowid DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Actions returns the recorded actions of a run in the order they were taken
func (r *RunRepository) Actions(runID string) ([]models.RunAction, error) {
	query := `
		SELECT position, kind, course_id, course_code, assignment, content, task_id, due, error
		FROM run_actions
		WHERE run_id = ?
		ORDER BY position
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run actions: %w", err)
	}
	defer rows.Close()

	var actions []models.RunAction
	for rows.Next() {
		var (
			a    models.RunAction
			kind string
		)
		if err := rows.Scan(&a.Position, &kind, &a.CourseID, &a.CourseCode, &a.Assignment, &a.Content, &a.TaskID, &a.Due, &a.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run action: %w", err)
		}
		a.Kind = models.ActionKind(kind)
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return actions, nil
}

// Prune deletes all but the keep most recent runs and returns how many were removed
func (r *RunRepository) Prune(keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("%w: keep must not be negative", shared.ErrInvalidArgument)
	}

	query := `
		DELETE FROM runs
		WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
		)
	`

	result, err := r.db.Exec(query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

func insertActions(tx *sql.Tx, runID string, actions []models.RunAction) error {
	if len(actions) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_actions (run_id, position, kind, course_id, course_code, assignment, content, task_id, due, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare action insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range actions {
		_, err := stmt.Exec(runID, a.Position, string(a.Kind), a.CourseID, a.CourseCode, a.Assignment, a.Content, a.TaskID, a.Due, a.Error)
		if err != nil {
			return fmt.Errorf("failed to insert action %d: %w", a.Position, err)
		}
	}
	return nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a single runs row into a [models.Run]
func scanRun(s scanner) (*models.Run, error) {
	var (
		id         string
		status     string
		dryRun     bool
		created    int
		updated    int
		skipped    int
		failed     int
		errMsg     string
		startedAt  time.Time
		finishedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := s.Scan(&id, &status, &dryRun, &created, &updated, &skipped, &failed, &errMsg, &startedAt, &finishedAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewRun(startedAt, dryRun)
	run.SetID(id)
	run.SetCounts(created, updated, skipped, failed)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	var finished *time.Time
	if finishedAt.Valid {
		finished = &finishedAt.Time
	}
	run.Restore(models.RunStatus(status), errMsg, finished)

	return run, nil
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)
