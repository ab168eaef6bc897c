package tasks

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	tasksapi "google.golang.org/api/tasks/v1"
)

// Service is a pass-through adapter from task operations to the Tasks API.
// It holds no state besides its AuthManager and is safe for concurrent use.
type Service struct {
	auth AuthManager
}

// NewService creates a Service that obtains its API client from auth.
func NewService(auth AuthManager) *Service {
	return &Service{auth: auth}
}

// ListTaskLists lists the task lists of the authenticated user.
func (s *Service) ListTaskLists(ctx context.Context, opts ListTaskListsOptions) (*mcp.CallToolResult, error) {
	client, err := s.auth.TasksClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.ListTaskLists(ctx, ListTaskListsRequest{
		MaxResults: opts.MaxResults,
		PageToken:  opts.PageToken,
	})
	if err != nil {
		return nil, err
	}

	items := []*tasksapi.TaskList{}
	if resp != nil && resp.Items != nil {
		items = resp.Items
	}
	return jsonResult(items)
}

// ListTasks lists the tasks of one task list.
func (s *Service) ListTasks(ctx context.Context, in ListTasksInput) (*mcp.CallToolResult, error) {
	client, err := s.auth.TasksClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.ListTasks(ctx, ListTasksRequest{
		Tasklist:      in.TaskListID,
		ShowCompleted: in.ShowCompleted,
		ShowDeleted:   in.ShowDeleted,
		ShowHidden:    in.ShowHidden,
		ShowAssigned:  in.ShowAssigned,
		MaxResults:    in.MaxResults,
		PageToken:     in.PageToken,
		DueMin:        in.DueMin,
		DueMax:        in.DueMax,
	})
	if err != nil {
		return nil, err
	}

	items := []*tasksapi.Task{}
	if resp != nil && resp.Items != nil {
		items = resp.Items
	}
	return jsonResult(items)
}

// CreateTask inserts a new task into a task list.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*mcp.CallToolResult, error) {
	client, err := s.auth.TasksClient(ctx)
	if err != nil {
		return nil, err
	}

	created, err := client.InsertTask(ctx, InsertTaskRequest{
		Tasklist: in.TaskListID,
		RequestBody: TaskBody{
			Title: String(in.Title),
			Notes: in.Notes,
			Due:   in.Due,
		},
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(created)
}

// UpdateTask patches the provided fields of a task.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (*mcp.CallToolResult, error) {
	client, err := s.auth.TasksClient(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := client.PatchTask(ctx, PatchTaskRequest{
		Tasklist: in.TaskListID,
		Task:     in.TaskID,
		RequestBody: TaskBody{
			Title:  in.Title,
			Notes:  in.Notes,
			Due:    in.Due,
			Status: in.Status,
		},
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(updated)
}

// CompleteTask marks a task as completed.
func (s *Service) CompleteTask(ctx context.Context, ref TaskRef) (*mcp.CallToolResult, error) {
	client, err := s.auth.TasksClient(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := client.PatchTask(ctx, PatchTaskRequest{
		Tasklist:    ref.TaskListID,
		Task:        ref.TaskID,
		RequestBody: TaskBody{Status: String(StatusCompleted)},
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(updated)
}

// DeleteTask removes a task from a task list.
func (s *Service) DeleteTask(ctx context.Context, ref TaskRef) (*mcp.CallToolResult, error) {
	client, err := s.auth.TasksClient(ctx)
	if err != nil {
		return nil, err
	}

	if err := client.DeleteTask(ctx, DeleteTaskRequest{
		Tasklist: ref.TaskListID,
		Task:     ref.TaskID,
	}); err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(DeletedMessage(ref)), nil
}

// DeletedMessage is the confirmation text returned by DeleteTask.
func DeletedMessage(ref TaskRef) string {
	return fmt.Sprintf("Task %s deleted successfully from list %s.", ref.TaskID, ref.TaskListID)
}

// jsonResult renders v as 2-space indented JSON inside a text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := EncodeJSON(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return mcp.NewToolResultText(data), nil
}
