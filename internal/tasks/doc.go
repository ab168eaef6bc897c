// Package tasks exposes Google Tasks operations through a uniform
// request/response shape.
//
// Service maps each call onto exactly one Tasks API call and renders the
// result as an MCP text result:
//   - ListTaskLists: tasklists.list, returns the items as JSON
//   - ListTasks: tasks.list, returns the items as JSON
//   - CreateTask: tasks.insert, returns the created task as JSON
//   - UpdateTask: tasks.patch with only the provided fields, returns the task as JSON
//   - CompleteTask: tasks.patch with status "completed", returns the task as JSON
//   - DeleteTask: tasks.delete, returns a confirmation sentence
//
// The remote client is obtained from an AuthManager on every call. Errors from
// the AuthManager or from the remote call are returned unchanged; there are no
// retries and no pagination loops.
//
// GoogleAPI is the production API implementation backed by
// google.golang.org/api/tasks/v1.
//
// # Example Usage
//
//	svc := tasks.NewService(authManager)
//	result, err := svc.ListTasks(ctx, tasks.ListTasksInput{
//	    TaskListID:    "@default",
//	    ShowCompleted: tasks.Bool(true),
//	})
//	if err != nil {
//	    return err
//	}
package tasks
