package tasks

import (
	"context"

	tasksapi "google.golang.org/api/tasks/v1"
)

// StatusCompleted is the Tasks API status of a finished task.
const StatusCompleted = "completed"

// API is the subset of the Google Tasks API used by Service.
// Request structs use the remote parameter names.
type API interface {
	ListTaskLists(ctx context.Context, req ListTaskListsRequest) (*tasksapi.TaskLists, error)
	ListTasks(ctx context.Context, req ListTasksRequest) (*tasksapi.Tasks, error)
	InsertTask(ctx context.Context, req InsertTaskRequest) (*tasksapi.Task, error)
	PatchTask(ctx context.Context, req PatchTaskRequest) (*tasksapi.Task, error)
	DeleteTask(ctx context.Context, req DeleteTaskRequest) error
}

// AuthManager hands out authenticated Tasks API clients.
type AuthManager interface {
	TasksClient(ctx context.Context) (API, error)
}

// ListTaskListsRequest mirrors the tasklists.list parameters.
type ListTaskListsRequest struct {
	MaxResults *int64
	PageToken  *string
}

// ListTasksRequest mirrors the tasks.list parameters.
type ListTasksRequest struct {
	Tasklist      string
	ShowCompleted *bool
	ShowDeleted   *bool
	ShowHidden    *bool
	ShowAssigned  *bool
	MaxResults    *int64
	PageToken     *string
	DueMin        *string
	DueMax        *string
}

// TaskBody is the request body for tasks.insert and tasks.patch.
// Nil fields are not sent.
type TaskBody struct {
	Title  *string `json:"title,omitempty"`
	Notes  *string `json:"notes,omitempty"`
	Due    *string `json:"due,omitempty"`
	Status *string `json:"status,omitempty"`
}

// InsertTaskRequest mirrors the tasks.insert parameters.
type InsertTaskRequest struct {
	Tasklist    string
	RequestBody TaskBody
}

// PatchTaskRequest mirrors the tasks.patch parameters.
type PatchTaskRequest struct {
	Tasklist    string
	Task        string
	RequestBody TaskBody
}

// DeleteTaskRequest mirrors the tasks.delete parameters.
type DeleteTaskRequest struct {
	Tasklist string
	Task     string
}

// ListTaskListsOptions are the optional paging parameters of ListTaskLists.
type ListTaskListsOptions struct {
	MaxResults *int64
	PageToken  *string
}

// ListTasksInput is the input of ListTasks.
type ListTasksInput struct {
	TaskListID    string
	ShowCompleted *bool
	ShowDeleted   *bool
	ShowHidden    *bool
	ShowAssigned  *bool
	MaxResults    *int64
	PageToken     *string
	DueMin        *string // RFC 3339
	DueMax        *string // RFC 3339
}

// CreateTaskInput is the input of CreateTask.
type CreateTaskInput struct {
	TaskListID string
	Title      string
	Notes      *string
	Due        *string // RFC 3339
}

// UpdateTaskInput is the input of UpdateTask. Only non-nil fields are patched.
type UpdateTaskInput struct {
	TaskListID string
	TaskID     string
	Title      *string
	Notes      *string
	Status     *string // "needsAction" or "completed"
	Due        *string // RFC 3339
}

// TaskRef identifies a single task.
type TaskRef struct {
	TaskListID string
	TaskID     string
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }
