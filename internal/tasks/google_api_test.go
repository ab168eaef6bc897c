package tasks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasksapi "google.golang.org/api/tasks/v1"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
}

// newTestGoogleAPI starts a fake Tasks endpoint that records the last request
// and replies with status and body.
func newTestGoogleAPI(t *testing.T, status int, body string) (*GoogleAPI, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = map[string]string{}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			rec.body = map[string]any{}
			_ = json.Unmarshal(data, &rec.body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	svc, err := tasksapi.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	return NewGoogleAPI(svc), rec
}

func TestGoogleAPI_ListTaskLists(t *testing.T) {
	api, rec := newTestGoogleAPI(t, http.StatusOK, `{"items":[{"id":"list1","title":"My Tasks"}]}`)

	resp, err := api.ListTaskLists(context.Background(), ListTaskListsRequest{
		MaxResults: Int64(10),
		PageToken:  String("token"),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.True(t, strings.HasSuffix(rec.path, "/users/@me/lists"), "unexpected path %s", rec.path)
	assert.Equal(t, "10", rec.query["maxResults"])
	assert.Equal(t, "token", rec.query["pageToken"])

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "list1", resp.Items[0].Id)
	assert.Equal(t, "My Tasks", resp.Items[0].Title)
}

func TestGoogleAPI_ListTaskLists_OmitsUnsetOptions(t *testing.T) {
	api, rec := newTestGoogleAPI(t, http.StatusOK, `{}`)

	_, err := api.ListTaskLists(context.Background(), ListTaskListsRequest{})
	require.NoError(t, err)

	assert.NotContains(t, rec.query, "maxResults")
	assert.NotContains(t, rec.query, "pageToken")
}

func TestGoogleAPI_ListTasks(t *testing.T) {
	api, rec := newTestGoogleAPI(t, http.StatusOK, `{"items":[{"id":"task1","title":"Buy milk"}]}`)

	resp, err := api.ListTasks(context.Background(), ListTasksRequest{
		Tasklist:      "list1",
		ShowCompleted: Bool(false),
		ShowAssigned:  Bool(true),
		DueMin:        String("2025-01-01T00:00:00Z"),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.True(t, strings.HasSuffix(rec.path, "/lists/list1/tasks"), "unexpected path %s", rec.path)
	assert.Equal(t, "false", rec.query["showCompleted"])
	assert.Equal(t, "true", rec.query["showAssigned"])
	assert.Equal(t, "2025-01-01T00:00:00Z", rec.query["dueMin"])
	assert.NotContains(t, rec.query, "showDeleted")
	assert.NotContains(t, rec.query, "showHidden")
	assert.NotContains(t, rec.query, "dueMax")

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Buy milk", resp.Items[0].Title)
}

func TestGoogleAPI_InsertTask(t *testing.T) {
	api, rec := newTestGoogleAPI(t, http.StatusOK, `{"id":"task1","title":"New Task"}`)

	created, err := api.InsertTask(context.Background(), InsertTaskRequest{
		Tasklist: "list1",
		RequestBody: TaskBody{
			Title: String("New Task"),
			Notes: String("Some notes"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.True(t, strings.HasSuffix(rec.path, "/lists/list1/tasks"), "unexpected path %s", rec.path)
	assert.Equal(t, map[string]any{"title": "New Task", "notes": "Some notes"}, rec.body)
	assert.Equal(t, "task1", created.Id)
}

func TestGoogleAPI_PatchTask(t *testing.T) {
	api, rec := newTestGoogleAPI(t, http.StatusOK, `{"id":"task1","status":"completed"}`)

	updated, err := api.PatchTask(context.Background(), PatchTaskRequest{
		Tasklist:    "list1",
		Task:        "task1",
		RequestBody: TaskBody{Status: String(StatusCompleted)},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, rec.method)
	assert.True(t, strings.HasSuffix(rec.path, "/lists/list1/tasks/task1"), "unexpected path %s", rec.path)
	assert.Equal(t, map[string]any{"status": "completed"}, rec.body)
	assert.Equal(t, StatusCompleted, updated.Status)
}

func TestGoogleAPI_PatchTask_ClearsField(t *testing.T) {
	api, rec := newTestGoogleAPI(t, http.StatusOK, `{"id":"task1"}`)

	_, err := api.PatchTask(context.Background(), PatchTaskRequest{
		Tasklist:    "list1",
		Task:        "task1",
		RequestBody: TaskBody{Notes: String("")},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"notes": ""}, rec.body)
}

func TestGoogleAPI_DeleteTask(t *testing.T) {
	api, rec := newTestGoogleAPI(t, http.StatusNoContent, "")

	err := api.DeleteTask(context.Background(), DeleteTaskRequest{Tasklist: "list1", Task: "task1"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, rec.method)
	assert.True(t, strings.HasSuffix(rec.path, "/lists/list1/tasks/task1"), "unexpected path %s", rec.path)
}

func TestGoogleAPI_ErrorIsReturned(t *testing.T) {
	api, _ := newTestGoogleAPI(t, http.StatusNotFound, `{"error":{"code":404,"message":"Task list not found."}}`)

	_, err := api.ListTasks(context.Background(), ListTasksRequest{Tasklist: "missing"})
	require.Error(t, err)

	var apiErr *googleapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
}

func TestTaskBody_ToAPI(t *testing.T) {
	body := TaskBody{Title: String("t"), Due: String("2025-11-07T00:00:00Z")}
	got := body.toAPI()

	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "2025-11-07T00:00:00Z", got.Due)
	assert.Empty(t, got.Notes)
	assert.Empty(t, got.Status)
	assert.Empty(t, got.ForceSendFields)

	empty := TaskBody{Title: String(""), Status: String("")}.toAPI()
	assert.ElementsMatch(t, []string{"Title", "Status"}, empty.ForceSendFields)
}
