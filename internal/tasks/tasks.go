package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/duesync/internal/models"
	"github.com/desertthunder/duesync/internal/services"
	"github.com/desertthunder/duesync/internal/shared"
)

// SyncOptions configures a [SyncEngine].
type SyncOptions struct {
	ProjectID       string           // Target project tasks are created in and matched against
	Exclude         map[int64]bool   // Course IDs that are never synced
	CourseCodeStart int              // Rune offset where the course code starts in the display name
	CourseCodeEnd   int              // Rune offset where the course code ends (exclusive)
	OnError         string           // shared.OnErrorAbort or shared.OnErrorContinue
	DryRun          bool             // Decide but do not call create/update
	Now             func() time.Time // Clock used by the past-due filter
	Logger          *log.Logger
}

// OptionsFromConfig builds [SyncOptions] from the sync section of cfg.
func OptionsFromConfig(cfg *shared.Config, logger *log.Logger) SyncOptions {
	return SyncOptions{
		ProjectID:       cfg.Sync.TargetProjectID,
		Exclude:         cfg.ExcludedCourses(),
		CourseCodeStart: cfg.Sync.CourseCodeStart,
		CourseCodeEnd:   cfg.Sync.CourseCodeEnd,
		OnError:         cfg.Sync.OnError,
		Logger:          logger,
	}
}

// SyncResult summarizes a run. It is returned alongside any error so partial progress can be reported.
type SyncResult struct {
	DryRun          bool
	IndexSize       int                // Tasks in the target project when the run started
	Courses         int                // Active courses listed
	ExcludedCourses int                // Courses skipped by the exclusion set
	FailedCourses   int                // Courses whose assignments could not be listed
	Actions         []models.RunAction // One entry per create/update decision, in order
	Created         int
	Updated         int
	Failed          int
	SkippedNoDue    int
	SkippedPastDue  int
}

// Skipped is the number of assignments dropped by the filter.
func (r *SyncResult) Skipped() int {
	return r.SkippedNoDue + r.SkippedPastDue
}

// SyncEngine synchronizes assignments from a [services.CourseSource] into a [services.TaskSink].
//
// A single engine must not run concurrently with another engine (or another process) writing
// to the same tracker account: each run decides create-or-update from an index built once at
// its start, so overlapping runs can create duplicate tasks.
type SyncEngine struct {
	source services.CourseSource
	sink   services.TaskSink
	opts   SyncOptions
	logger *log.Logger
}

// NewSyncEngine creates a SyncEngine, filling unset options with defaults.
func NewSyncEngine(source services.CourseSource, sink services.TaskSink, opts SyncOptions) *SyncEngine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.OnError == "" {
		opts.OnError = shared.OnErrorAbort
	}
	if opts.Exclude == nil {
		opts.Exclude = map[int64]bool{}
	}

	return &SyncEngine{
		source: source,
		sink:   sink,
		opts:   opts,
		logger: opts.Logger,
	}
}

// sendProgress delivers an update unless the context is done. Sends block so no item report is lost.
func (e *SyncEngine) sendProgress(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	case <-ctx.Done():
	}
}

// BuildIndex lists the tracker's tasks and indexes those in the target project.
//
// A failure is returned wrapped in [shared.ErrIndexUnavailable]; an empty index is never substituted.
func (e *SyncEngine) BuildIndex(ctx context.Context) (TaskIndex, error) {
	if e.sink == nil {
		return nil, fmt.Errorf("%w: task sink not initialized", shared.ErrServiceUnavailable)
	}

	all, err := e.sink.Tasks(ctx)
	if err != nil {
		e.logger.Error("failed to get tasks", "service", e.sink.Name(), "error", err)
		return nil, fmt.Errorf("%w: %w", shared.ErrIndexUnavailable, err)
	}

	idx := NewTaskIndex(all, e.opts.ProjectID)
	e.logger.Debug("built task index", "project", e.opts.ProjectID, "visible", len(all), "indexed", len(idx))
	return idx, nil
}

// Run performs one full synchronization pass.
//
// The index is built first; if that fails no course is listed. Under the abort policy the first
// failed create/update (or assignment listing) stops the iteration and the error wraps
// [shared.ErrSyncAborted]. Under the continue policy failures are recorded and the run returns
// [shared.ErrPartialSync] at the end. Tasks already written stay written either way.
func (e *SyncEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: course source not initialized", shared.ErrServiceUnavailable)
	}
	if e.sink == nil {
		return nil, fmt.Errorf("%w: task sink not initialized", shared.ErrServiceUnavailable)
	}

	result := &SyncResult{DryRun: e.opts.DryRun}

	e.sendProgress(ctx, progress, fetchIndexUpdate(e.sink.Name()))
	index, err := e.BuildIndex(ctx)
	if err != nil {
		return result, err
	}
	result.IndexSize = len(index)

	e.sendProgress(ctx, progress, fetchCoursesUpdate(e.source.Name(), len(index)))
	courses, err := e.source.ActiveCourses(ctx)
	if err != nil {
		e.logger.Error("failed to list courses", "service", e.source.Name(), "error", err)
		return result, fmt.Errorf("failed to list courses: %w", err)
	}
	result.Courses = len(courses)

	now := e.opts.Now()
	abort := e.opts.OnError == shared.OnErrorAbort

	for i, course := range courses {
		code := CourseCode(course, e.opts.CourseCodeStart, e.opts.CourseCodeEnd)
		logger := e.logger.With("course", course.ID, "code", code)

		if e.opts.Exclude[course.ID] {
			result.ExcludedCourses++
			logger.Debug("course excluded")
			e.sendProgress(ctx, progress, skipCourseUpdate(i+1, len(courses), course, code))
			continue
		}

		e.sendProgress(ctx, progress, fetchAssignmentsUpdate(i+1, len(courses), course, code))
		assignments, err := e.source.Assignments(ctx, course.ID)
		if err != nil {
			logger.Error("failed to list assignments", "error", err)
			result.FailedCourses++
			e.sendProgress(ctx, progress, courseFailedUpdate(i+1, len(courses), course, code, err))
			if abort {
				return result, fmt.Errorf("%w: %w", shared.ErrSyncAborted, err)
			}
			continue
		}

		for j, a := range assignments {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			if v := Filter(a, now); v != Keep {
				if v == SkipNoDue {
					result.SkippedNoDue++
				} else {
					result.SkippedPastDue++
				}
				logger.Debug("assignment skipped", "assignment", a.Name, "reason", v)
				e.sendProgress(ctx, progress, skipAssignmentUpdate(j+1, len(assignments), a, v))
				continue
			}

			action, err := e.apply(ctx, index, course, code, a)
			action.Position = len(result.Actions)
			result.Actions = append(result.Actions, action)

			switch {
			case err != nil:
				result.Failed++
				logger.Error("failed to sync assignment", "assignment", a.Name, "action", action.Kind, "content", action.Content, "error", err)
			case action.Kind == models.ActionCreate:
				result.Created++
			default:
				result.Updated++
			}
			e.sendProgress(ctx, progress, actionUpdate(j+1, len(assignments), action, e.sink.Name(), e.opts.DryRun))

			if err != nil && abort {
				return result, fmt.Errorf("%w: failed to %s %q: %w", shared.ErrSyncAborted, action.Kind, a.Name, err)
			}
		}
	}

	if result.Failed > 0 || result.FailedCourses > 0 {
		return result, fmt.Errorf("%w: %d assignments and %d courses failed", shared.ErrPartialSync, result.Failed, result.FailedCourses)
	}
	return result, nil
}

// apply creates or updates the task for one assignment that passed the filter.
func (e *SyncEngine) apply(ctx context.Context, index TaskIndex, course models.Course, code string, a models.Assignment) (models.RunAction, error) {
	content := ContentKey(code, a.Name)
	due := a.DueAt.Format(time.RFC3339)
	labels := []string{code}

	action := models.RunAction{
		Kind:       models.ActionCreate,
		CourseID:   course.ID,
		CourseCode: code,
		Assignment: a.Name,
		Content:    content,
		Due:        due,
	}

	taskID, exists := index.Lookup(content)
	if exists {
		action.Kind = models.ActionUpdate
		action.TaskID = taskID
	}

	if e.opts.DryRun {
		return action, nil
	}

	var err error
	if exists {
		_, err = e.sink.UpdateTask(ctx, taskID, models.TaskUpdate{DueDatetime: due, Labels: labels})
	} else {
		var task *models.Task
		task, err = e.sink.CreateTask(ctx, models.NewTask{
			Content:     content,
			ProjectID:   e.opts.ProjectID,
			DueDatetime: due,
			Labels:      labels,
		})
		if task != nil {
			action.TaskID = task.ID
		}
	}

	if err != nil {
		action.Error = err.Error()
	}
	return action, err
}
