package models

// TaskDue is the due information the tracker stores for a task.
type TaskDue struct {
	Date     string `json:"date"`
	Datetime string `json:"datetime,omitempty"`
	String   string `json:"string,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Task represents a task stored in the tracker.
type Task struct {
	ID        string
	Content   string
	ProjectID string
	Labels    []string
	Due       *TaskDue
}

// NewTask is a request to create a task.
type NewTask struct {
	Content     string   `json:"content"`
	ProjectID   string   `json:"project_id"`
	DueDatetime string   `json:"due_datetime,omitempty"`
	Labels      []string `json:"labels"`
}

// TaskUpdate is a request to update a task. Labels replace the existing set.
type TaskUpdate struct {
	DueDatetime string   `json:"due_datetime,omitempty"`
	Labels      []string `json:"labels"`
}
