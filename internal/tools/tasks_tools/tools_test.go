package tasks_tools

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/teemow/workspace-tasks/internal/server"
	"github.com/teemow/workspace-tasks/internal/tasks"
	"github.com/teemow/workspace-tasks/internal/tools/batch"
	"github.com/teemow/workspace-tasks/internal/tools/common"
)

type fakeAPI struct {
	mu      sync.Mutex
	err     error
	listReq *tasks.ListTasksRequest
	lists   *tasks.ListTaskListsRequest
	insert  *tasks.InsertTaskRequest
	patch   *tasks.PatchTaskRequest
	deleted *tasks.DeleteTaskRequest
}

func (f *fakeAPI) ListTaskLists(_ context.Context, req tasks.ListTaskListsRequest) (*tasksapi.TaskLists, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = &req
	if f.err != nil {
		return nil, f.err
	}
	return &tasksapi.TaskLists{Items: []*tasksapi.TaskList{{Id: "list1", Title: "My Tasks"}}}, nil
}

func (f *fakeAPI) ListTasks(_ context.Context, req tasks.ListTasksRequest) (*tasksapi.Tasks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return &tasksapi.Tasks{}, nil
}

func (f *fakeAPI) InsertTask(_ context.Context, req tasks.InsertTaskRequest) (*tasksapi.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insert = &req
	if f.err != nil {
		return nil, f.err
	}
	return &tasksapi.Task{Id: "task1", Title: *req.RequestBody.Title}, nil
}

func (f *fakeAPI) PatchTask(_ context.Context, req tasks.PatchTaskRequest) (*tasksapi.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patch = &req
	if f.err != nil {
		return nil, f.err
	}
	return &tasksapi.Task{Id: req.Task, Status: tasks.StatusCompleted}, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, req tasks.DeleteTaskRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = &req
	return f.err
}

type fakeAuth struct {
	api *fakeAPI
	err error
}

func (a *fakeAuth) TasksClient(context.Context) (tasks.API, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.api, nil
}

func setup(t *testing.T, readOnly bool, auth *fakeAuth) *mcpserver.MCPServer {
	t.Helper()
	sc := server.NewServerContext(context.Background(), tasks.NewService(auth), "default")
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterTasksTools(s, sc, readOnly))
	return s
}

func call(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func toolNames(s *mcpserver.MCPServer) []string {
	var names []string
	for name := range s.ListTools() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestRegisterTasksTools_ReadOnly(t *testing.T) {
	s := setup(t, true, &fakeAuth{api: &fakeAPI{}})

	assert.Equal(t, []string{ToolCreateTask, ToolListTaskLists, ToolListTasks}, toolNames(s))
}

func TestRegisterTasksTools_ReadWrite(t *testing.T) {
	s := setup(t, false, &fakeAuth{api: &fakeAPI{}})

	assert.Equal(t, []string{
		ToolCompleteTask, ToolCreateTask, ToolDeleteTask,
		ToolListTaskLists, ToolListTasks, ToolUpdateTask,
	}, toolNames(s))
}

func TestRegisterTasksTools_RequiresService(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0")
	sc := server.NewServerContext(context.Background(), nil, "default")
	defer func() { _ = sc.Shutdown() }()

	assert.Error(t, RegisterTasksTools(s, sc, true))
	assert.Error(t, RegisterTasksTools(s, nil, true))
}

func TestListTaskLists(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, true, &fakeAuth{api: api})

	result := call(t, s, ToolListTaskLists, map[string]any{"maxResults": float64(5), "pageToken": "p2"})

	assert.False(t, result.IsError)
	assert.Contains(t, common.ResultText(result), `"id": "list1"`)
	require.NotNil(t, api.lists)
	assert.Equal(t, tasks.Int64(5), api.lists.MaxResults)
	assert.Equal(t, tasks.String("p2"), api.lists.PageToken)
}

func TestListTasks_ForwardsFilters(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, true, &fakeAuth{api: api})

	result := call(t, s, ToolListTasks, map[string]any{
		"taskListId":    "list1",
		"showCompleted": true,
		"showHidden":    false,
		"maxResults":    float64(20),
		"dueMax":        "2025-12-31T00:00:00Z",
	})

	assert.False(t, result.IsError)
	assert.Equal(t, "[]", common.ResultText(result))
	require.NotNil(t, api.listReq)
	assert.Equal(t, tasks.ListTasksRequest{
		Tasklist:      "list1",
		ShowCompleted: tasks.Bool(true),
		ShowHidden:    tasks.Bool(false),
		MaxResults:    tasks.Int64(20),
		DueMax:        tasks.String("2025-12-31T00:00:00Z"),
	}, *api.listReq)
}

func TestListTasks_MissingTaskList(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, true, &fakeAuth{api: api})

	result := call(t, s, ToolListTasks, map[string]any{})

	assert.True(t, result.IsError)
	assert.Equal(t, "taskListId is required", common.ResultText(result))
	assert.Nil(t, api.listReq, "no remote call on invalid input")
}

func TestListTasks_InvalidArgumentType(t *testing.T) {
	s := setup(t, true, &fakeAuth{api: &fakeAPI{}})

	result := call(t, s, ToolListTasks, map[string]any{"taskListId": "list1", "showDeleted": "yes"})

	assert.True(t, result.IsError)
	assert.Equal(t, "showDeleted must be a boolean", common.ResultText(result))
}

func TestCreateTask(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, true, &fakeAuth{api: api})

	result := call(t, s, ToolCreateTask, map[string]any{
		"taskListId": "list1",
		"title":      "New Task",
		"notes":      "Some notes",
	})

	assert.False(t, result.IsError)
	assert.Contains(t, common.ResultText(result), `"title": "New Task"`)
	require.NotNil(t, api.insert)
	assert.Equal(t, tasks.InsertTaskRequest{
		Tasklist: "list1",
		RequestBody: tasks.TaskBody{
			Title: tasks.String("New Task"),
			Notes: tasks.String("Some notes"),
		},
	}, *api.insert)
}

func TestCreateTask_MissingTitle(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, true, &fakeAuth{api: api})

	result := call(t, s, ToolCreateTask, map[string]any{"taskListId": "list1"})

	assert.True(t, result.IsError)
	assert.Equal(t, "title is required", common.ResultText(result))
	assert.Nil(t, api.insert)
}

func TestUpdateTask_OnlyProvidedFields(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, false, &fakeAuth{api: api})

	result := call(t, s, ToolUpdateTask, map[string]any{
		"taskListId": "list1",
		"taskId":     "task1",
		"title":      "Updated Task",
		"notes":      "",
	})

	assert.False(t, result.IsError)
	require.NotNil(t, api.patch)
	assert.Equal(t, tasks.PatchTaskRequest{
		Tasklist: "list1",
		Task:     "task1",
		RequestBody: tasks.TaskBody{
			Title: tasks.String("Updated Task"),
			Notes: tasks.String(""),
		},
	}, *api.patch)
}

func TestCompleteTask(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, false, &fakeAuth{api: api})

	result := call(t, s, ToolCompleteTask, map[string]any{"taskListId": "list1", "taskId": "task1"})

	assert.False(t, result.IsError)
	require.NotNil(t, api.patch)
	assert.Equal(t, tasks.TaskBody{Status: tasks.String(tasks.StatusCompleted)}, api.patch.RequestBody)
}

func TestCompleteTask_MissingTaskID(t *testing.T) {
	s := setup(t, false, &fakeAuth{api: &fakeAPI{}})

	result := call(t, s, ToolCompleteTask, map[string]any{"taskListId": "list1"})

	assert.True(t, result.IsError)
	assert.Equal(t, "taskId is required", common.ResultText(result))
}

func TestDeleteTask(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, false, &fakeAuth{api: api})

	result := call(t, s, ToolDeleteTask, map[string]any{"taskListId": "list1", "taskId": "task1"})

	assert.False(t, result.IsError)
	assert.Equal(t, "Task task1 deleted successfully from list list1.", common.ResultText(result))
	assert.Equal(t, &tasks.DeleteTaskRequest{Tasklist: "list1", Task: "task1"}, api.deleted)
}

func decodeSummary(t *testing.T, result *mcp.CallToolResult) batch.Summary {
	t.Helper()
	var summary batch.Summary
	require.NoError(t, json.Unmarshal([]byte(common.ResultText(result)), &summary))
	return summary
}

func TestCompleteTask_Batch(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, false, &fakeAuth{api: api})

	result := call(t, s, ToolCompleteTask, map[string]any{"taskListId": "list1", "taskId": []any{"task1", "task2"}})

	assert.False(t, result.IsError)
	summary := decodeSummary(t, result)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, "task1", summary.Results[0].ID)
	assert.Contains(t, summary.Results[1].Result, `"id": "task2"`)
	assert.Equal(t, "task2", api.patch.Task)
}

func TestDeleteTask_Batch(t *testing.T) {
	api := &fakeAPI{}
	s := setup(t, false, &fakeAuth{api: api})

	result := call(t, s, ToolDeleteTask, map[string]any{"taskListId": "list1", "taskId": []any{"task1", "task2"}})

	summary := decodeSummary(t, result)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "Task task1 deleted successfully from list list1.", summary.Results[0].Result)
	assert.Equal(t, "Task task2 deleted successfully from list list1.", summary.Results[1].Result)
}

func TestDeleteTask_BatchFailures(t *testing.T) {
	api := &fakeAPI{err: errors.New("Task not found")}
	s := setup(t, false, &fakeAuth{api: api})

	result := call(t, s, ToolDeleteTask, map[string]any{"taskListId": "list1", "taskId": []any{"a", "b"}})

	assert.False(t, result.IsError)
	summary := decodeSummary(t, result)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, batch.StatusError, summary.Results[0].Status)
	assert.Equal(t, "Task not found", summary.Results[0].Error)
}

func TestDeleteTask_InvalidTaskIDs(t *testing.T) {
	s := setup(t, false, &fakeAuth{api: &fakeAPI{}})

	result := call(t, s, ToolDeleteTask, map[string]any{"taskListId": "list1", "taskId": []any{"a", 1.0}})

	assert.True(t, result.IsError)
	assert.Equal(t, "taskId[1] must be a string", common.ResultText(result))
}

func TestTools_RemoteErrorIsErrorResult(t *testing.T) {
	api := &fakeAPI{err: errors.New("Task list not found")}
	s := setup(t, false, &fakeAuth{api: api})

	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{ToolListTaskLists, map[string]any{}, "Failed to list task lists: Task list not found"},
		{ToolListTasks, map[string]any{"taskListId": "x"}, "Failed to list tasks: Task list not found"},
		{ToolCreateTask, map[string]any{"taskListId": "x", "title": "t"}, "Failed to create task: Task list not found"},
		{ToolUpdateTask, map[string]any{"taskListId": "x", "taskId": "y"}, "Failed to update task: Task list not found"},
		{ToolCompleteTask, map[string]any{"taskListId": "x", "taskId": "y"}, "Failed to complete task: Task list not found"},
		{ToolDeleteTask, map[string]any{"taskListId": "x", "taskId": "y"}, "Failed to delete task: Task list not found"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			result := call(t, s, tt.tool, tt.args)
			assert.True(t, result.IsError)
			assert.Equal(t, tt.want, common.ResultText(result))
		})
	}
}

func TestTools_AuthErrorIsErrorResult(t *testing.T) {
	s := setup(t, true, &fakeAuth{err: errors.New("no OAuth token stored for account default")})

	result := call(t, s, ToolListTaskLists, map[string]any{})

	assert.True(t, result.IsError)
	assert.Equal(t, "Failed to list task lists: no OAuth token stored for account default", common.ResultText(result))
}
