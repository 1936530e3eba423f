package models

import "time"

// Course represents an actively enrolled course from the course source.
//
// Name is nil when the source does not expose a display name for the course
// (e.g. enrollments restricted by date).
type Course struct {
	ID   int64
	Name *string
}

// Assignment represents a single piece of coursework.
//
// DueAt is nil when the assignment has no due date.
type Assignment struct {
	ID       int64
	CourseID int64
	Name     string
	DueAt    *time.Time
}

// StringPtr returns a pointer to s. Used to populate optional fields.
func StringPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
