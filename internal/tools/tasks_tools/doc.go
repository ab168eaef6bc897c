// Package tasks_tools registers the Google Tasks MCP tools.
//
// Read tools are always available:
//   - tasks_list_task_lists: list the user's task lists
//   - tasks_list_tasks: list tasks of one list with visibility, paging and due filters
//   - tasks_create_task: add a task
//
// Tools that change or remove existing tasks need --yolo:
//   - tasks_update_task: patch title, notes, status or due date
//   - tasks_complete_task: set status to completed
//   - tasks_delete_task: delete a task
//
// Results are the JSON rendered by tasks.Service. Failures come back as MCP
// error results so the calling agent sees the Google API message.
package tasks_tools
