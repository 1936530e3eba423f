package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/duesync/internal/models"
	"github.com/desertthunder/duesync/internal/shared"
)

func TestTodoistService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewTodoistService", func(t *testing.T) {
		t.Run("default base URL", func(t *testing.T) {
			svc, err := NewTodoistService(ctx, "", "key", time.Second)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.baseURL != defaultTodoistBaseURL {
				t.Errorf("expected base URL %s, got %s", defaultTodoistBaseURL, svc.baseURL)
			}
		})

		t.Run("missing API key", func(t *testing.T) {
			if _, err := NewTodoistService(ctx, "", "", time.Second); err == nil {
				t.Error("expected error for missing API key")
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		svc, _ := NewTodoistService(ctx, "", "key", time.Second)
		if svc.Name() != "Todoist" {
			t.Errorf("expected name Todoist, got %s", svc.Name())
		}
	})

	t.Run("Tasks follows cursor", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if r.URL.Path != "/api/v1/tasks" {
				t.Errorf("expected path /api/v1/tasks, got %s", r.URL.Path)
			}
			if r.Method != http.MethodGet {
				t.Errorf("expected GET method, got %s", r.Method)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer todoist_key" {
				t.Errorf("expected bearer auth header, got %q", got)
			}

			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Query().Get("cursor") {
			case "":
				w.Write([]byte(`{"results":[{"id":"t1","content":"[CS-453] - HW1","project_id":"p1","labels":["CS-453"],"due":{"date":"2026-01-20T05:59:59Z"}}],"next_cursor":"abc"}`))
			case "abc":
				w.Write([]byte(`{"results":[{"id":"t2","content":"Groceries","project_id":"p2","labels":[]}],"next_cursor":null}`))
			default:
				t.Errorf("unexpected cursor %s", r.URL.Query().Get("cursor"))
			}
		}))
		defer server.Close()

		svc, _ := NewTodoistService(ctx, server.URL, "todoist_key", 5*time.Second)
		tasks, err := svc.Tasks(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if calls != 2 {
			t.Errorf("expected 2 page requests, got %d", calls)
		}
		if len(tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(tasks))
		}
		if tasks[0].ID != "t1" || tasks[0].ProjectID != "p1" || tasks[0].Content != "[CS-453] - HW1" {
			t.Errorf("unexpected first task %+v", tasks[0])
		}
		if tasks[0].Due == nil || tasks[0].Due.Date != "2026-01-20T05:59:59Z" {
			t.Errorf("expected due to be decoded, got %+v", tasks[0].Due)
		}
		if tasks[1].Due != nil {
			t.Errorf("expected no due for second task, got %+v", tasks[1].Due)
		}
	})

	t.Run("CreateTask", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/tasks" || r.Method != http.MethodPost {
				t.Errorf("expected POST /api/v1/tasks, got %s %s", r.Method, r.URL.Path)
			}
			if r.Header.Get("X-Request-Id") == "" {
				t.Error("expected X-Request-Id header")
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["content"] != "[CS-453] - HW2" || body["project_id"] != "p1" || body["due_datetime"] != "2026-01-27T05:59:59Z" {
				t.Errorf("unexpected body %v", body)
			}
			labels, _ := body["labels"].([]any)
			if len(labels) != 1 || labels[0] != "CS-453" {
				t.Errorf("expected labels [CS-453], got %v", body["labels"])
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"t9","content":"[CS-453] - HW2","project_id":"p1","labels":["CS-453"]}`))
		}))
		defer server.Close()

		svc, _ := NewTodoistService(ctx, server.URL, "todoist_key", 5*time.Second)
		task, err := svc.CreateTask(ctx, models.NewTask{
			Content:     "[CS-453] - HW2",
			ProjectID:   "p1",
			DueDatetime: "2026-01-27T05:59:59Z",
			Labels:      []string{"CS-453"},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if task.ID != "t9" {
			t.Errorf("expected created task ID t9, got %s", task.ID)
		}
	})

	t.Run("CreateTask requires content", func(t *testing.T) {
		svc, _ := NewTodoistService(ctx, "http://localhost", "todoist_key", time.Second)
		if _, err := svc.CreateTask(ctx, models.NewTask{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("UpdateTask", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/tasks/t1" || r.Method != http.MethodPost {
				t.Errorf("expected POST /api/v1/tasks/t1, got %s %s", r.Method, r.URL.Path)
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if _, ok := body["content"]; ok {
				t.Error("update must not send content")
			}
			if body["due_datetime"] != "2026-01-20T05:59:59Z" {
				t.Errorf("unexpected due_datetime %v", body["due_datetime"])
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"t1","content":"[CS-453] - HW1","project_id":"p1","labels":["CS-453"]}`))
		}))
		defer server.Close()

		svc, _ := NewTodoistService(ctx, server.URL, "todoist_key", 5*time.Second)
		task, err := svc.UpdateTask(ctx, "t1", models.TaskUpdate{DueDatetime: "2026-01-20T05:59:59Z", Labels: []string{"CS-453"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if task.ID != "t1" {
			t.Errorf("expected task t1, got %s", task.ID)
		}
	})

	t.Run("UpdateTask not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Task not found", http.StatusNotFound)
		}))
		defer server.Close()

		svc, _ := NewTodoistService(ctx, server.URL, "todoist_key", 5*time.Second)
		_, err := svc.UpdateTask(ctx, "gone", models.TaskUpdate{})

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusNotFound || apiErr.Body != "Task not found" {
			t.Errorf("unexpected API error %+v", apiErr)
		}
		if !errors.Is(err, shared.ErrTaskNotFound) {
			t.Errorf("expected ErrTaskNotFound, got %v", err)
		}
		if IsUnauthorized(err) {
			t.Error("404 must not be reported as unauthorized")
		}
	})

	t.Run("Tasks server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		svc, _ := NewTodoistService(ctx, server.URL, "todoist_key", 5*time.Second)
		if _, err := svc.Tasks(ctx); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestNewBearerClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("Authorization")))
	}))
	defer server.Close()

	client := NewBearerClient(context.Background(), "secret", 2*time.Second)
	if client.Timeout != 2*time.Second {
		t.Errorf("expected timeout 2s, got %v", client.Timeout)
	}

	if _, err := doRequest(context.Background(), client, "Test", http.MethodGet, server.URL, nil, nil, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if got := string(body); got != "Bearer secret" {
		t.Errorf("expected Authorization 'Bearer secret', got %q", got)
	}
}
