package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/duesync/internal/shared"
	"github.com/desertthunder/duesync/internal/tasks"
	"github.com/desertthunder/duesync/internal/ui"
	"github.com/urfave/cli/v3"
)

type courseView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Excluded bool   `json:"excluded"`
}

type assignmentView struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	DueAt   *time.Time `json:"due_at"`
	Content string     `json:"content"`
	Verdict string     `json:"verdict"`
}

type taskView struct {
	ID      string   `json:"id"`
	Content string   `json:"content"`
	Due     string   `json:"due,omitempty"`
	Labels  []string `json:"labels"`
}

// Courses lists active courses with the code the sync derives for them.
func (r *Runner) Courses(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	source, _, err := r.connect(ctx, config)
	if err != nil {
		return err
	}

	courses, err := source.ActiveCourses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	excluded := config.ExcludedCourses()
	views := make([]courseView, 0, len(courses))
	for _, c := range courses {
		v := courseView{
			ID:       c.ID,
			Code:     tasks.CourseCode(c, config.Sync.CourseCodeStart, config.Sync.CourseCodeEnd),
			Excluded: excluded[c.ID],
		}
		if c.Name != nil {
			v.Name = *c.Name
		}
		views = append(views, v)
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%d active courses", len(views)))
	for _, v := range views {
		line := fmt.Sprintf("%-10d [%s] %s", v.ID, v.Code, v.Name)
		if v.Excluded {
			r.writePlain("%s\n", ui.Styles.Skipped("%s (excluded)", line))
			continue
		}
		r.writePlain("    %s\n", line)
	}
	return nil
}

// Assignments lists a course's assignments with the filter verdict and task content.
func (r *Runner) Assignments(ctx context.Context, cmd *cli.Command) error {
	courseID := int64(cmd.Int("course"))
	if courseID <= 0 {
		return fmt.Errorf("%w: --course must be a positive course ID", shared.ErrInvalidFlag)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	source, _, err := r.connect(ctx, config)
	if err != nil {
		return err
	}

	courses, err := source.ActiveCourses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	code, found := "", false
	for _, c := range courses {
		if c.ID == courseID {
			code, found = tasks.CourseCode(c, config.Sync.CourseCodeStart, config.Sync.CourseCodeEnd), true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: course %d is not an active course", shared.ErrInvalidArgument, courseID)
	}

	assignments, err := source.Assignments(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to list assignments: %w", err)
	}

	now := r.now()
	views := make([]assignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, assignmentView{
			ID:      a.ID,
			Name:    a.Name,
			DueAt:   a.DueAt,
			Content: tasks.ContentKey(code, a.Name),
			Verdict: tasks.Filter(a, now).String(),
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("[%s] %d assignments", code, len(views)))
	for _, v := range views {
		due := "no due date"
		if v.DueAt != nil {
			due = v.DueAt.Format(time.RFC3339)
		}
		if v.Verdict != tasks.Keep.String() {
			r.writePlain("%s\n", ui.Styles.Skipped("%s (%s, %s)", v.Content, due, v.Verdict))
			continue
		}
		r.writePlain("    %s (%s)\n", v.Content, due)
	}
	return nil
}

// Tasks lists the tasks of the target project, which is the index the sync matches against.
func (r *Runner) Tasks(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	_, sink, err := r.connect(ctx, config)
	if err != nil {
		return err
	}

	all, err := sink.Tasks(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrIndexUnavailable, err)
	}

	views := []taskView{}
	for _, t := range tasks.ProjectTasks(all, config.Sync.TargetProjectID) {
		v := taskView{ID: t.ID, Content: t.Content, Labels: t.Labels}
		if t.Due != nil {
			v.Due = t.Due.Datetime
			if v.Due == "" {
				v.Due = t.Due.Date
			}
		}
		views = append(views, v)
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%d tasks in project %s", len(views), config.Sync.TargetProjectID))
	for _, v := range views {
		if v.Due != "" {
			r.writePlain("%-12s %s (due %s)\n", v.ID, v.Content, v.Due)
		} else {
			r.writePlain("%-12s %s\n", v.ID, v.Content)
		}
	}
	return nil
}
