// Package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"testing"

	"github.com/desertthunder/duesync/internal/models"
)

// FakeCourseSource is an in-memory [services.CourseSource]
type FakeCourseSource struct {
	Courses         []models.Course
	ByCourse        map[int64][]models.Assignment
	CoursesErr      error
	AssignmentErrs  map[int64]error
	CourseCalls     int
	AssignmentCalls []int64
}

func (f *FakeCourseSource) Name() string { return "FakeCanvas" }

func (f *FakeCourseSource) ActiveCourses(ctx context.Context) ([]models.Course, error) {
	f.CourseCalls++
	if f.CoursesErr != nil {
		return nil, f.CoursesErr
	}
	return f.Courses, nil
}

func (f *FakeCourseSource) Assignments(ctx context.Context, courseID int64) ([]models.Assignment, error) {
	f.AssignmentCalls = append(f.AssignmentCalls, courseID)
	if err := f.AssignmentErrs[courseID]; err != nil {
		return nil, err
	}
	return f.ByCourse[courseID], nil
}

// UpdateCall records one call to [FakeTaskSink.UpdateTask]
type UpdateCall struct {
	TaskID string
	Update models.TaskUpdate
}

// FakeTaskSink is an in-memory [services.TaskSink]. Created tasks are visible to later Tasks calls.
type FakeTaskSink struct {
	Existing   []models.Task
	TasksErr   error
	CreateErrs map[string]error // keyed by content
	UpdateErrs map[string]error // keyed by task ID
	TaskCalls  int
	Created    []models.NewTask
	Updated    []UpdateCall
	nextID     int
}

func (f *FakeTaskSink) Name() string { return "FakeTodoist" }

func (f *FakeTaskSink) Tasks(ctx context.Context) ([]models.Task, error) {
	f.TaskCalls++
	if f.TasksErr != nil {
		return nil, f.TasksErr
	}
	return slices.Clone(f.Existing), nil
}

func (f *FakeTaskSink) CreateTask(ctx context.Context, task models.NewTask) (*models.Task, error) {
	if err := f.CreateErrs[task.Content]; err != nil {
		return nil, err
	}
	f.Created = append(f.Created, task)
	f.nextID++
	created := models.Task{
		ID:        fmt.Sprintf("task-%d", f.nextID),
		Content:   task.Content,
		ProjectID: task.ProjectID,
		Labels:    slices.Clone(task.Labels),
		Due:       &models.TaskDue{Datetime: task.DueDatetime},
	}
	f.Existing = append(f.Existing, created)
	return &created, nil
}

func (f *FakeTaskSink) UpdateTask(ctx context.Context, taskID string, update models.TaskUpdate) (*models.Task, error) {
	if err := f.UpdateErrs[taskID]; err != nil {
		return nil, err
	}
	f.Updated = append(f.Updated, UpdateCall{TaskID: taskID, Update: update})
	for i := range f.Existing {
		if f.Existing[i].ID == taskID {
			f.Existing[i].Labels = slices.Clone(update.Labels)
			f.Existing[i].Due = &models.TaskDue{Datetime: update.DueDatetime}
			return &f.Existing[i], nil
		}
	}
	return nil, fmt.Errorf("task %s not found", taskID)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
