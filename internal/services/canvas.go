package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/duesync/internal/models"
)

const canvasPerPage = 100

// CanvasCourse is a course as returned by GET /api/v1/courses.
//
// Name is absent for enrollments the user cannot see yet.
// See https://canvas.instructure.com/doc/api/courses.html
type CanvasCourse struct {
	ID                     int64   `json:"id"`
	Name                   *string `json:"name"`
	CourseCode             string  `json:"course_code"`
	WorkflowState          string  `json:"workflow_state"`
	AccessRestrictedByDate bool    `json:"access_restricted_by_date"`
}

// CanvasAssignment is an assignment as returned by GET /api/v1/courses/:id/assignments.
type CanvasAssignment struct {
	ID       int64   `json:"id"`
	CourseID int64   `json:"course_id"`
	Name     string  `json:"name"`
	DueAt    *string `json:"due_at"`
	HTMLURL  string  `json:"html_url"`
}

// CanvasService implements [CourseSource] for the Canvas REST API.
type CanvasService struct {
	baseURL    string
	httpClient *http.Client
}

// NewCanvasService creates a Canvas client for the instance at baseURL authenticated with apiKey.
func NewCanvasService(ctx context.Context, baseURL, apiKey string, timeout time.Duration) (*CanvasService, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("missing canvas base URL")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("missing canvas API key")
	}

	return &CanvasService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewBearerClient(ctx, apiKey, timeout),
	}, nil
}

func (c *CanvasService) Name() string {
	return "Canvas"
}

// ActiveCourses retrieves every course with an active enrollment, following pagination.
func (c *CanvasService) ActiveCourses(ctx context.Context) ([]models.Course, error) {
	q := url.Values{}
	q.Set("enrollment_state", "active")
	q.Set("per_page", fmt.Sprint(canvasPerPage))
	next := c.baseURL + "/api/v1/courses?" + q.Encode()

	var courses []models.Course
	for next != "" {
		var page []CanvasCourse
		headers, err := doRequest(ctx, c.httpClient, c.Name(), http.MethodGet, next, nil, nil, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to list courses: %w", err)
		}

		for _, cc := range page {
			courses = append(courses, models.Course{ID: cc.ID, Name: cc.Name})
		}
		next = nextLink(headers.Get("Link"))
	}

	return courses, nil
}

// Assignments retrieves every assignment of a course, following pagination.
//
// A due_at that is not RFC 3339 is treated as absent.
func (c *CanvasService) Assignments(ctx context.Context, courseID int64) ([]models.Assignment, error) {
	next := fmt.Sprintf("%s/api/v1/courses/%d/assignments?per_page=%d", c.baseURL, courseID, canvasPerPage)

	var assignments []models.Assignment
	for next != "" {
		var page []CanvasAssignment
		headers, err := doRequest(ctx, c.httpClient, c.Name(), http.MethodGet, next, nil, nil, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to list assignments for course %d: %w", courseID, err)
		}

		for _, ca := range page {
			a := models.Assignment{ID: ca.ID, CourseID: courseID, Name: ca.Name}
			if ca.DueAt != nil {
				if due, err := time.Parse(time.RFC3339, *ca.DueAt); err == nil {
					a.DueAt = &due
				}
			}
			assignments = append(assignments, a)
		}
		next = nextLink(headers.Get("Link"))
	}

	return assignments, nil
}

// nextLink extracts the rel="next" URL from an RFC 8288 Link header, or "" when there is none.
func nextLink(header string) string {
	for _, link := range strings.Split(header, ",") {
		target, params, ok := strings.Cut(strings.TrimSpace(link), ";")
		if !ok {
			continue
		}
		for _, p := range strings.Split(params, ";") {
			key, val, _ := strings.Cut(strings.TrimSpace(p), "=")
			if strings.EqualFold(key, "rel") && strings.Trim(val, `"`) == "next" {
				return strings.Trim(strings.TrimSpace(target), "<>")
			}
		}
	}
	return ""
}
