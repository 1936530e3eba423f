package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/duesync/internal/models"
	"github.com/desertthunder/duesync/internal/shared"
)

const (
	defaultTodoistBaseURL = "https://api.todoist.com"
	todoistPageLimit      = 200
)

// TodoistTask is a task as returned by the unified Todoist API v1 (https://developer.todoist.com/api/v1/).
type TodoistTask struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	ProjectID string          `json:"project_id"`
	Labels    []string        `json:"labels"`
	Due       *models.TaskDue `json:"due"`
}

type todoistTaskPage struct {
	Results    []TodoistTask `json:"results"`
	NextCursor *string       `json:"next_cursor"`
}

func (t TodoistTask) toModel() *models.Task {
	return &models.Task{
		ID:        t.ID,
		Content:   t.Content,
		ProjectID: t.ProjectID,
		Labels:    t.Labels,
		Due:       t.Due,
	}
}

// TodoistService implements [TaskSink] for the Todoist API.
type TodoistService struct {
	baseURL    string
	httpClient *http.Client
}

// NewTodoistService creates a Todoist client authenticated with apiKey.
//
// baseURL defaults to https://api.todoist.com.
func NewTodoistService(ctx context.Context, baseURL, apiKey string, timeout time.Duration) (*TodoistService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing todoist API key")
	}
	if baseURL == "" {
		baseURL = defaultTodoistBaseURL
	}

	return &TodoistService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewBearerClient(ctx, apiKey, timeout),
	}, nil
}

func (t *TodoistService) Name() string {
	return "Todoist"
}

// Tasks retrieves all active tasks of the user across every project, following the cursor.
func (t *TodoistService) Tasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	cursor := ""

	for {
		q := url.Values{}
		q.Set("limit", fmt.Sprint(todoistPageLimit))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var page todoistTaskPage
		if _, err := doRequest(ctx, t.httpClient, t.Name(), http.MethodGet, t.baseURL+"/api/v1/tasks?"+q.Encode(), nil, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}

		for _, tt := range page.Results {
			tasks = append(tasks, *tt.toModel())
		}

		if page.NextCursor == nil || *page.NextCursor == "" {
			break
		}
		cursor = *page.NextCursor
	}

	return tasks, nil
}

// CreateTask creates a task. The X-Request-Id header lets Todoist drop accidental resubmits.
func (t *TodoistService) CreateTask(ctx context.Context, task models.NewTask) (*models.Task, error) {
	if task.Content == "" {
		return nil, fmt.Errorf("%w: task content is required", shared.ErrInvalidInput)
	}

	var created TodoistTask
	headers := map[string]string{"X-Request-Id": shared.GenerateID()}
	if _, err := doRequest(ctx, t.httpClient, t.Name(), http.MethodPost, t.baseURL+"/api/v1/tasks", headers, task, &created); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return created.toModel(), nil
}

// UpdateTask sets the due date and replaces the labels of the task with the given ID.
func (t *TodoistService) UpdateTask(ctx context.Context, taskID string, update models.TaskUpdate) (*models.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: task ID is required", shared.ErrInvalidInput)
	}

	var updated TodoistTask
	endpoint := fmt.Sprintf("%s/api/v1/tasks/%s", t.baseURL, url.PathEscape(taskID))
	headers := map[string]string{"X-Request-Id": shared.GenerateID()}
	if _, err := doRequest(ctx, t.httpClient, t.Name(), http.MethodPost, endpoint, headers, update, &updated); err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", taskID, err)
	}
	return updated.toModel(), nil
}
