package tasks_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-tasks/internal/instrumentation"
	"github.com/teemow/workspace-tasks/internal/server"
	"github.com/teemow/workspace-tasks/internal/tasks"
	"github.com/teemow/workspace-tasks/internal/tools/batch"
	"github.com/teemow/workspace-tasks/internal/tools/common"
)

// Tool names.
const (
	ToolListTaskLists = "tasks_list_task_lists"
	ToolListTasks     = "tasks_list_tasks"
	ToolCreateTask    = "tasks_create_task"
	ToolUpdateTask    = "tasks_update_task"
	ToolCompleteTask  = "tasks_complete_task"
	ToolDeleteTask    = "tasks_delete_task"
)

// RegisterTasksTools registers the Tasks tools with the MCP server.
// In read-only mode the tools that modify or remove existing tasks are left out.
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if sc == nil || sc.Service() == nil {
		return fmt.Errorf("tasks service is not configured")
	}

	s.AddTool(listTaskListsTool(), instrumented(ToolListTaskLists, instrumentation.OperationList, sc, handleListTaskLists))
	s.AddTool(listTasksTool(), instrumented(ToolListTasks, instrumentation.OperationList, sc, handleListTasks))
	s.AddTool(createTaskTool(), instrumented(ToolCreateTask, instrumentation.OperationCreate, sc, handleCreateTask))

	if !readOnly {
		s.AddTool(updateTaskTool(), instrumented(ToolUpdateTask, instrumentation.OperationUpdate, sc, handleUpdateTask))
		s.AddTool(completeTaskTool(), instrumented(ToolCompleteTask, instrumentation.OperationComplete, sc, handleCompleteTask))
		s.AddTool(deleteTaskTool(), instrumented(ToolDeleteTask, instrumentation.OperationDelete, sc, handleDeleteTask))
	}

	return nil
}

type handlerFunc func(ctx context.Context, svc *tasks.Service, args map[string]any) (*mcp.CallToolResult, error)

func instrumented(name, operation string, sc *server.ServerContext, h handlerFunc) common.ToolHandler {
	return common.InstrumentedToolHandlerWithService(name, instrumentation.ServiceTasks, operation, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h(ctx, sc.Service(), request.GetArguments())
		})
}

func listTaskListsTool() mcp.Tool {
	return mcp.NewTool(ToolListTaskLists,
		mcp.WithDescription("List all task lists for the authenticated user"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of task lists to return"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token of the page to return, from a previous response"),
		),
	)
}

func handleListTaskLists(ctx context.Context, svc *tasks.Service, args map[string]any) (*mcp.CallToolResult, error) {
	maxResults, err := common.OptionalInt64(args, "maxResults")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pageToken, err := common.OptionalString(args, "pageToken")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := svc.ListTaskLists(ctx, tasks.ListTaskListsOptions{
		MaxResults: maxResults,
		PageToken:  pageToken,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list task lists: %v", err)), nil
	}
	return result, nil
}

func listTasksTool() mcp.Tool {
	return mcp.NewTool(ToolListTasks,
		mcp.WithDescription("List tasks in a task list with optional filters"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithBoolean("showCompleted",
			mcp.Description("Include completed tasks"),
		),
		mcp.WithBoolean("showDeleted",
			mcp.Description("Include deleted tasks"),
		),
		mcp.WithBoolean("showHidden",
			mcp.Description("Include hidden tasks"),
		),
		mcp.WithBoolean("showAssigned",
			mcp.Description("Include tasks assigned from Docs or Chat spaces"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of tasks to return"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token of the page to return, from a previous response"),
		),
		mcp.WithString("dueMin",
			mcp.Description("Only return tasks due at or after this time (RFC3339 format)"),
		),
		mcp.WithString("dueMax",
			mcp.Description("Only return tasks due before this time (RFC3339 format)"),
		),
	)
}

func handleListTasks(ctx context.Context, svc *tasks.Service, args map[string]any) (*mcp.CallToolResult, error) {
	in, err := parseListTasksArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := svc.ListTasks(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
	}
	return result, nil
}

func parseListTasksArgs(args map[string]any) (tasks.ListTasksInput, error) {
	var in tasks.ListTasksInput
	var err error

	if in.TaskListID, err = common.RequiredString(args, "taskListId"); err != nil {
		return in, err
	}

	bools := []struct {
		name string
		dst  **bool
	}{
		{"showCompleted", &in.ShowCompleted},
		{"showDeleted", &in.ShowDeleted},
		{"showHidden", &in.ShowHidden},
		{"showAssigned", &in.ShowAssigned},
	}
	for _, b := range bools {
		if *b.dst, err = common.OptionalBool(args, b.name); err != nil {
			return in, err
		}
	}

	if in.MaxResults, err = common.OptionalInt64(args, "maxResults"); err != nil {
		return in, err
	}

	strs := []struct {
		name string
		dst  **string
	}{
		{"pageToken", &in.PageToken},
		{"dueMin", &in.DueMin},
		{"dueMax", &in.DueMax},
	}
	for _, s := range strs {
		if *s.dst, err = common.OptionalString(args, s.name); err != nil {
			return in, err
		}
	}

	return in, nil
}

func createTaskTool() mcp.Tool {
	return mcp.NewTool(ToolCreateTask,
		mcp.WithDescription("Create a new task in a task list"),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the task"),
		),
		mcp.WithString("notes",
			mcp.Description("Notes describing the task"),
		),
		mcp.WithString("due",
			mcp.Description("Due date (RFC3339 format, only the date part is kept by Google Tasks)"),
		),
	)
}

func handleCreateTask(ctx context.Context, svc *tasks.Service, args map[string]any) (*mcp.CallToolResult, error) {
	taskListID, err := common.RequiredString(args, "taskListId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := common.OptionalString(args, "notes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	due, err := common.OptionalString(args, "due")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := svc.CreateTask(ctx, tasks.CreateTaskInput{
		TaskListID: taskListID,
		Title:      title,
		Notes:      notes,
		Due:        due,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create task: %v", err)), nil
	}
	return result, nil
}

func updateTaskTool() mcp.Tool {
	return mcp.NewTool(ToolUpdateTask,
		mcp.WithDescription("Update fields of an existing task. Omitted fields are left unchanged"),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("notes",
			mcp.Description("New notes, an empty string clears them"),
		),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum("needsAction", tasks.StatusCompleted),
		),
		mcp.WithString("due",
			mcp.Description("New due date (RFC3339 format)"),
		),
	)
}

func handleUpdateTask(ctx context.Context, svc *tasks.Service, args map[string]any) (*mcp.CallToolResult, error) {
	ref, err := parseTaskRef(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := tasks.UpdateTaskInput{TaskListID: ref.TaskListID, TaskID: ref.TaskID}
	fields := []struct {
		name string
		dst  **string
	}{
		{"title", &in.Title},
		{"notes", &in.Notes},
		{"status", &in.Status},
		{"due", &in.Due},
	}
	for _, f := range fields {
		if *f.dst, err = common.OptionalString(args, f.name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	result, err := svc.UpdateTask(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update task: %v", err)), nil
	}
	return result, nil
}

func parseTaskRef(args map[string]any) (tasks.TaskRef, error) {
	taskListID, err := common.RequiredString(args, "taskListId")
	if err != nil {
		return tasks.TaskRef{}, err
	}
	taskID, err := common.RequiredString(args, "taskId")
	if err != nil {
		return tasks.TaskRef{}, err
	}
	return tasks.TaskRef{TaskListID: taskListID, TaskID: taskID}, nil
}

// batchTaskOptions accept taskId as a single ID or an array of IDs.
func batchTaskOptions(verb string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("Task ID (string) or array of task IDs to "+verb),
		),
	}
}

type taskOperation func(ctx context.Context, ref tasks.TaskRef) (*mcp.CallToolResult, error)

// runTaskOperation forwards a single ID to op and returns its result as is.
// Several IDs are processed one by one and reported as a batch summary.
func runTaskOperation(ctx context.Context, args map[string]any, failure string, op taskOperation) (*mcp.CallToolResult, error) {
	taskListID, err := common.RequiredString(args, "taskListId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := batch.IDs(args, "taskId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(ids) == 1 {
		result, err := op(ctx, tasks.TaskRef{TaskListID: taskListID, TaskID: ids[0]})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", failure, err)), nil
		}
		return result, nil
	}

	results := batch.Run(ctx, ids, func(ctx context.Context, id string) (string, error) {
		result, err := op(ctx, tasks.TaskRef{TaskListID: taskListID, TaskID: id})
		if err != nil {
			return "", err
		}
		return common.ResultText(result), nil
	})
	summary, err := batch.Summarize(results).JSON()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", failure, err)), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func completeTaskTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Mark one or more tasks as completed"),
		mcp.WithIdempotentHintAnnotation(true),
	}, batchTaskOptions("complete")...)
	return mcp.NewTool(ToolCompleteTask, opts...)
}

func handleCompleteTask(ctx context.Context, svc *tasks.Service, args map[string]any) (*mcp.CallToolResult, error) {
	return runTaskOperation(ctx, args, "complete task", svc.CompleteTask)
}

func deleteTaskTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Delete one or more tasks permanently"),
		mcp.WithDestructiveHintAnnotation(true),
	}, batchTaskOptions("delete")...)
	return mcp.NewTool(ToolDeleteTask, opts...)
}

func handleDeleteTask(ctx context.Context, svc *tasks.Service, args map[string]any) (*mcp.CallToolResult, error) {
	return runTaskOperation(ctx, args, "delete task", svc.DeleteTask)
}
