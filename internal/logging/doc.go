// Package logging holds the slog conventions of workspace-tasks: logger
// construction, shared attribute keys and redaction helpers.
//
//	logger := logging.WithTool(slog.Default(), "tasks_list_tasks")
//	logger.Debug("listing tasks", logging.TaskList(id), logging.Err(err))
//
// Tokens are never logged; use SanitizeToken to record that one was present.
package logging
