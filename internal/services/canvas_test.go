package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/duesync/internal/shared"
	tu "github.com/desertthunder/duesync/internal/testing"
)

func TestCanvasService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewCanvasService", func(t *testing.T) {
		t.Run("trims trailing slash", func(t *testing.T) {
			svc, err := NewCanvasService(ctx, "https://school.instructure.com/", "key", time.Second)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.baseURL != "https://school.instructure.com" {
				t.Errorf("expected trimmed base URL, got %s", svc.baseURL)
			}
			if svc.httpClient.Timeout != time.Second {
				t.Errorf("expected timeout 1s, got %v", svc.httpClient.Timeout)
			}
		})

		t.Run("missing base URL", func(t *testing.T) {
			if _, err := NewCanvasService(ctx, "", "key", time.Second); err == nil {
				t.Error("expected error for missing base URL")
			}
		})

		t.Run("missing API key", func(t *testing.T) {
			if _, err := NewCanvasService(ctx, "https://school.instructure.com", "", time.Second); err == nil {
				t.Error("expected error for missing API key")
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		svc, _ := NewCanvasService(ctx, "http://localhost", "key", time.Second)
		if svc.Name() != "Canvas" {
			t.Errorf("expected name Canvas, got %s", svc.Name())
		}
	})

	t.Run("ActiveCourses follows pagination", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/courses" {
				t.Errorf("expected path /api/v1/courses, got %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer canvas_key" {
				t.Errorf("expected bearer auth header, got %q", got)
			}
			if r.URL.Query().Get("enrollment_state") != "active" {
				t.Errorf("expected enrollment_state=active, got %s", r.URL.RawQuery)
			}

			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Query().Get("page") {
			case "":
				w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?enrollment_state=active&page=2>; rel="next", <%s/api/v1/courses?enrollment_state=active&page=2>; rel="last"`, server.URL, server.URL))
				json.NewEncoder(w).Encode([]map[string]any{
					{"id": 101, "name": "202301 - CS-453-01 Operating Systems"},
				})
			case "2":
				json.NewEncoder(w).Encode([]map[string]any{
					{"id": 1512975, "access_restricted_by_date": true},
				})
			default:
				t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
			}
		}))
		defer server.Close()

		svc, err := NewCanvasService(ctx, server.URL, "canvas_key", 5*time.Second)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		courses, err := svc.ActiveCourses(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(courses) != 2 {
			t.Fatalf("expected 2 courses, got %d", len(courses))
		}
		if courses[0].ID != 101 || courses[0].Name == nil || *courses[0].Name != "202301 - CS-453-01 Operating Systems" {
			t.Errorf("unexpected first course %+v", courses[0])
		}
		if courses[1].ID != 1512975 || courses[1].Name != nil {
			t.Errorf("expected second course without a name, got %+v", courses[1])
		}
	})

	t.Run("Assignments parses due dates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/courses/101/assignments" {
				t.Errorf("expected assignments path, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"id": 1, "name": "HW1", "due_at": "2026-01-20T05:59:59Z"},
				{"id": 2, "name": "Reading", "due_at": null},
				{"id": 3, "name": "Broken", "due_at": "next tuesday"}
			]`))
		}))
		defer server.Close()

		svc, _ := NewCanvasService(ctx, server.URL, "canvas_key", 5*time.Second)
		assignments, err := svc.Assignments(ctx, 101)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(assignments) != 3 {
			t.Fatalf("expected 3 assignments, got %d", len(assignments))
		}

		want := time.Date(2026, 1, 20, 5, 59, 59, 0, time.UTC)
		if assignments[0].DueAt == nil || !assignments[0].DueAt.Equal(want) {
			t.Errorf("expected HW1 due %v, got %v", want, assignments[0].DueAt)
		}
		if assignments[0].CourseID != 101 {
			t.Errorf("expected course ID 101, got %d", assignments[0].CourseID)
		}
		if assignments[1].DueAt != nil {
			t.Errorf("expected no due date for Reading, got %v", assignments[1].DueAt)
		}
		if assignments[2].DueAt != nil {
			t.Errorf("expected unparseable due date to be dropped, got %v", assignments[2].DueAt)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errors":[{"message":"Invalid access token."}]}`))
		}))
		defer server.Close()

		svc, _ := NewCanvasService(ctx, server.URL, "bad", 5*time.Second)
		_, err := svc.ActiveCourses(ctx)
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if !IsUnauthorized(err) {
			t.Error("expected IsUnauthorized to be true")
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		svc, _ := NewCanvasService(ctx, "https://canvas.example.edu", "key", time.Second)
		svc.httpClient = &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

		_, err := svc.Assignments(ctx, 101)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if IsUnauthorized(err) {
			t.Error("transport failure is not an auth failure")
		}
	})
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: ""},
		{
			name:   "next present",
			header: `<https://x/api/v1/courses?page=1>; rel="current", <https://x/api/v1/courses?page=2>; rel="next", <https://x/api/v1/courses?page=5>; rel="last"`,
			want:   "https://x/api/v1/courses?page=2",
		},
		{
			name:   "last page",
			header: `<https://x/api/v1/courses?page=5>; rel="current", <https://x/api/v1/courses?page=1>; rel="first"`,
			want:   "",
		},
		{
			name:   "unquoted rel",
			header: `<https://x/a?page=3>; rel=next`,
			want:   "https://x/a?page=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextLink(tt.header); got != tt.want {
				t.Errorf("nextLink() = %q, want %q", got, tt.want)
			}
		})
	}
}
