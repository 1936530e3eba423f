package tasks

import (
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/duesync/internal/models"
)

// Verdict is the outcome of filtering one assignment.
type Verdict int

const (
	Keep Verdict = iota
	SkipNoDue
	SkipPastDue
)

func (v Verdict) String() string {
	switch v {
	case Keep:
		return "keep"
	case SkipNoDue:
		return "no due date"
	case SkipPastDue:
		return "past due"
	default:
		return ""
	}
}

// CourseCode cuts the short course label out of the display name.
//
// The name is sliced by rune at [start, end), clamped to its length, so a short
// name yields a short (possibly empty) code. Names that do not follow the
// expected convention produce a garbled code. A course without a name is
// labelled with its decimal ID.
func CourseCode(c models.Course, start, end int) string {
	if c.Name == nil {
		return strconv.FormatInt(c.ID, 10)
	}

	r := []rune(*c.Name)
	start = min(max(start, 0), len(r))
	end = min(max(end, start), len(r))
	return string(r[start:end])
}

// ContentKey formats the task content that identifies an assignment in the tracker.
func ContentKey(courseCode, assignmentName string) string {
	return fmt.Sprintf("[%s] - %s", courseCode, assignmentName)
}

// Filter decides whether an assignment is synced.
//
// The due instant and now are compared as naive wall-clock times: each keeps
// the clock reading of its own zone and the zones are then ignored. Near a UTC
// offset boundary this can keep an assignment that is already a few hours past
// due, or drop one that is not.
func Filter(a models.Assignment, now time.Time) Verdict {
	if a.DueAt == nil {
		return SkipNoDue
	}
	if wallClock(*a.DueAt).Before(wallClock(now)) {
		return SkipPastDue
	}
	return Keep
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// TaskIndex maps task content to task ID for the tasks of one project.
type TaskIndex map[string]string

// ProjectTasks returns the tasks of projectID in their original order.
func ProjectTasks(tasks []models.Task, projectID string) []models.Task {
	kept := []models.Task{}
	for _, t := range tasks {
		if t.ProjectID == projectID {
			kept = append(kept, t)
		}
	}
	return kept
}

// NewTaskIndex keeps the tasks of projectID. When two tasks share content the later one wins.
func NewTaskIndex(tasks []models.Task, projectID string) TaskIndex {
	idx := make(TaskIndex)
	for _, t := range ProjectTasks(tasks, projectID) {
		idx[t.Content] = t.ID
	}
	return idx
}

// Lookup returns the ID of the task with the given content.
func (idx TaskIndex) Lookup(content string) (string, bool) {
	id, ok := idx[content]
	return id, ok
}
