package tasks

import (
	"fmt"

	"github.com/desertthunder/duesync/internal/models"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // models.RunAction for item phases, models.Course for course phases
	DryRun  bool   // Set on item phases when the action was only planned
}

// Operation phase enumeration
type Phase int

const (
	FetchIndex Phase = iota
	FetchCourses
	SkipCourse
	FetchAssignments
	CourseFailed
	SkipAssignment
	CreateTask
	UpdateTask
	ItemFailed
)

func (p Phase) String() string {
	switch p {
	case FetchIndex:
		return "fetch_index"
	case FetchCourses:
		return "fetch_courses"
	case SkipCourse:
		return "skip_course"
	case FetchAssignments:
		return "fetch_assignments"
	case CourseFailed:
		return "course_failed"
	case SkipAssignment:
		return "skip_assignment"
	case CreateTask:
		return "create_task"
	case UpdateTask:
		return "update_task"
	case ItemFailed:
		return "item_failed"
	default:
		return ""
	}
}

func fetchIndexUpdate(sink string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchIndex,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching existing tasks from %s...", sink),
	}
}

func fetchCoursesUpdate(source string, indexed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCourses,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Indexed %d existing tasks, fetching courses from %s...", indexed, source),
	}
}

func skipCourseUpdate(step, total int, course models.Course, code string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipCourse,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Skipping excluded course %s (%d)", code, course.ID),
		Data:    course,
	}
}

func fetchAssignmentsUpdate(step, total int, course models.Course, code string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAssignments,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching assignments for %s (%d/%d)", code, step, total),
		Data:    course,
	}
}

func courseFailedUpdate(step, total int, course models.Course, code string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CourseFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to fetch assignments for %s - (%v)", code, err),
		Data:    course,
	}
}

func skipAssignmentUpdate(step, total int, a models.Assignment, v Verdict) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipAssignment,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s skipped (%s)", a.Name, v),
		Data:    a,
	}
}

func actionUpdate(step, total int, action models.RunAction, sink string, dryRun bool) ProgressUpdate {
	update := ProgressUpdate{Step: step, Total: total, Data: action, DryRun: dryRun}
	switch {
	case action.Failed():
		update.Phase = ItemFailed
		update.Message = fmt.Sprintf("Failed to %s %s - (%s)", action.Kind, action.Assignment, action.Error)
	case action.Kind == models.ActionCreate && dryRun:
		update.Phase = CreateTask
		update.Message = fmt.Sprintf("%s would be added to %s", action.Assignment, sink)
	case action.Kind == models.ActionCreate:
		update.Phase = CreateTask
		update.Message = fmt.Sprintf("%s added to %s", action.Assignment, sink)
	case dryRun:
		update.Phase = UpdateTask
		update.Message = fmt.Sprintf("%s would be updated on %s", action.Assignment, sink)
	default:
		update.Phase = UpdateTask
		update.Message = fmt.Sprintf("%s updated on %s", action.Assignment, sink)
	}
	return update
}
