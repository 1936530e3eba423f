package tasks

import (
	"testing"
	"time"

	"github.com/desertthunder/duesync/internal/models"
)

func TestCourseCode(t *testing.T) {
	tests := []struct {
		name       string
		course     models.Course
		start, end int
		want       string
	}{
		{
			name:   "term prefixed name",
			course: models.Course{ID: 101, Name: models.StringPtr("202301 - CS-453-01 Operating Systems")},
			start:  9, end: 15,
			want: "CS-453",
		},
		{
			name:   "custom offsets",
			course: models.Course{ID: 102, Name: models.StringPtr("CS 453-01 Systems")},
			start:  3, end: 9,
			want: "453-01",
		},
		{
			name:   "name shorter than range",
			course: models.Course{ID: 103, Name: models.StringPtr("Orientation")},
			start:  9, end: 15,
			want: "on",
		},
		{
			name:   "name shorter than start",
			course: models.Course{ID: 104, Name: models.StringPtr("Art")},
			start:  9, end: 15,
			want: "",
		},
		{
			name:   "no name falls back to ID",
			course: models.Course{ID: 1512975},
			start:  9, end: 15,
			want: "1512975",
		},
		{
			name:   "multibyte runes",
			course: models.Course{ID: 105, Name: models.StringPtr("202301 - ÉCO-101 Économie")},
			start:  9, end: 16,
			want: "ÉCO-101",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CourseCode(tt.course, tt.start, tt.end); got != tt.want {
				t.Errorf("CourseCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentKeyDeterminism(t *testing.T) {
	course := models.Course{ID: 102, Name: models.StringPtr("CS 453-01 Systems")}

	first := ContentKey(CourseCode(course, 3, 9), "HW1")
	second := ContentKey(CourseCode(course, 3, 9), "HW1")

	if first != "[453-01] - HW1" {
		t.Errorf("ContentKey() = %q, want %q", first, "[453-01] - HW1")
	}
	if first != second {
		t.Errorf("content key changed between invocations: %q vs %q", first, second)
	}
}

func TestFilter(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	pacific := time.FixedZone("PST", -8*60*60)

	tests := []struct {
		name string
		due  *time.Time
		now  time.Time
		want Verdict
	}{
		{name: "no due date", due: nil, now: now, want: SkipNoDue},
		{name: "future", due: models.TimePtr(now.Add(48 * time.Hour)), now: now, want: Keep},
		{name: "past", due: models.TimePtr(now.Add(-time.Minute)), now: now, want: SkipPastDue},
		{name: "exactly now", due: models.TimePtr(now), now: now, want: Keep},
		{
			// 10:00 PST is 18:00 UTC and still ahead, but the wall clocks compare 10:00 < 12:00.
			name: "wall clocks compared without zones",
			due:  models.TimePtr(time.Date(2026, 1, 10, 10, 0, 0, 0, pacific)),
			now:  now,
			want: SkipPastDue,
		},
		{
			name: "local now against UTC due",
			due:  models.TimePtr(time.Date(2026, 1, 10, 11, 0, 0, 0, time.UTC)),
			now:  time.Date(2026, 1, 10, 9, 0, 0, 0, pacific),
			want: Keep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := models.Assignment{Name: "HW", DueAt: tt.due}
			if got := Filter(a, tt.now); got != tt.want {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTaskIndex(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Content: "[CS-453] - HW1", ProjectID: "inbox"},
		{ID: "2", Content: "[CS-453] - HW1", ProjectID: "other"},
		{ID: "3", Content: "[CS-453] - HW2", ProjectID: "inbox"},
		{ID: "4", Content: "[CS-453] - HW2", ProjectID: "inbox"},
	}

	idx := NewTaskIndex(tasks, "inbox")

	if len(idx) != 2 {
		t.Fatalf("expected 2 indexed tasks, got %d", len(idx))
	}
	if id, ok := idx.Lookup("[CS-453] - HW1"); !ok || id != "1" {
		t.Errorf("expected HW1 -> 1, got %q (%v)", id, ok)
	}
	if id, _ := idx.Lookup("[CS-453] - HW2"); id != "4" {
		t.Errorf("expected last duplicate to win, got %q", id)
	}
	if _, ok := idx.Lookup("[CS-453] - HW3"); ok {
		t.Error("expected missing key")
	}
}

func TestProjectTasks(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Content: "[CS-453] - HW1", ProjectID: "inbox"},
		{ID: "2", Content: "[CS-453] - HW1", ProjectID: "other"},
		{ID: "3", Content: "[CS-453] - HW1", ProjectID: "inbox"},
	}

	kept := ProjectTasks(tasks, "inbox")
	if len(kept) != 2 || kept[0].ID != "1" || kept[1].ID != "3" {
		t.Errorf("expected tasks 1 and 3 in order, got %+v", kept)
	}
	if got := ProjectTasks(tasks, "missing"); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestVerdictString(t *testing.T) {
	if SkipPastDue.String() != "past due" || SkipNoDue.String() != "no due date" || Keep.String() != "keep" {
		t.Error("unexpected verdict strings")
	}
}
