package services

import (
	"context"

	"github.com/desertthunder/duesync/internal/models"
)

// CourseSource is a read-only provider of courses and their assignments.
type CourseSource interface {
	// ActiveCourses lists every course the authenticated user has an active enrollment in.
	ActiveCourses(ctx context.Context) ([]models.Course, error)

	// Assignments lists the assignments of a single course.
	Assignments(ctx context.Context, courseID int64) ([]models.Assignment, error)

	// Name returns the name of the service (e.g., "Canvas")
	Name() string
}

// TaskSink is a task tracker that tasks can be listed from, created in and updated in.
type TaskSink interface {
	// Tasks lists every task visible to the authenticated user, across all projects.
	Tasks(ctx context.Context) ([]models.Task, error)

	// CreateTask creates a task and returns it with its tracker-assigned ID.
	CreateTask(ctx context.Context, task models.NewTask) (*models.Task, error)

	// UpdateTask updates the due date and replaces the labels of an existing task.
	UpdateTask(ctx context.Context, taskID string, update models.TaskUpdate) (*models.Task, error)

	// Name returns the name of the service (e.g., "Todoist")
	Name() string
}
