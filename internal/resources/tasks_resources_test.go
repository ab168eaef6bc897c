package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/teemow/workspace-tasks/internal/server"
	"github.com/teemow/workspace-tasks/internal/tasks"
)

// listsAPI only implements ListTaskLists; other calls panic.
type listsAPI struct {
	tasks.API
	lists *tasksapi.TaskLists
	err   error
}

func (a *listsAPI) ListTaskLists(context.Context, tasks.ListTaskListsRequest) (*tasksapi.TaskLists, error) {
	return a.lists, a.err
}

type staticAuth struct {
	api tasks.API
}

func (a staticAuth) TasksClient(context.Context) (tasks.API, error) {
	return a.api, nil
}

func newServerContext(t *testing.T, api tasks.API) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(), tasks.NewService(staticAuth{api: api}), "work")
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func TestRegisterTasksResources(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithResourceCapabilities(false, false))

	assert.Error(t, RegisterTasksResources(s, nil, nil))
	assert.NoError(t, RegisterTasksResources(s, newServerContext(t, &listsAPI{}), nil))
}

func TestHandleAccount(t *testing.T) {
	sc := newServerContext(t, &listsAPI{})

	contents, err := handleAccount(readRequest(AccountURI), sc, func() bool { return true })
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, AccountURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &data))
	assert.Equal(t, "work", data["account"])
	assert.Equal(t, true, data["authorized"])
}

func TestHandleAccount_WithoutTokenCheck(t *testing.T) {
	contents, err := handleAccount(readRequest(AccountURI), newServerContext(t, &listsAPI{}), nil)
	require.NoError(t, err)

	text := contents[0].(*mcp.TextResourceContents)
	assert.NotContains(t, text.Text, "authorized")
}

func TestHandleTaskLists(t *testing.T) {
	api := &listsAPI{lists: &tasksapi.TaskLists{Items: []*tasksapi.TaskList{{Id: "list1", Title: "My Tasks"}}}}
	sc := newServerContext(t, api)

	contents, err := handleTaskLists(context.Background(), readRequest(TaskListsURI), sc.Service())
	require.NoError(t, err)

	text := contents[0].(*mcp.TextResourceContents)
	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "list1", items[0]["id"])
}

func TestHandleTaskLists_Error(t *testing.T) {
	remoteErr := errors.New("quota exceeded")
	sc := newServerContext(t, &listsAPI{err: remoteErr})

	_, err := handleTaskLists(context.Background(), readRequest(TaskListsURI), sc.Service())
	require.Error(t, err)
	assert.ErrorIs(t, err, remoteErr)
}
