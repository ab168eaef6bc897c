package google

import tasksapi "google.golang.org/api/tasks/v1"

// DefaultOAuthScopes are the scopes requested during login. Read and write
// access to Google Tasks is all the server needs.
var DefaultOAuthScopes = []string{
	tasksapi.TasksScope,
}
