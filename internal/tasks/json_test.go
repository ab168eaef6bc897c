package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tasksapi "google.golang.org/api/tasks/v1"
)

func TestEncodeJSON(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{
			name:  "html characters",
			value: map[string]string{"title": "Milk & eggs <2>"},
			want:  "{\n  \"title\": \"Milk & eggs <2>\"\n}",
		},
		{
			name:  "line separators",
			value: map[string]string{"notes": "a\u2028b\u2029c"},
			want:  "{\n  \"notes\": \"a\u2028b\u2029c\"\n}",
		},
		{
			name:  "escaped backslash before u0026",
			value: map[string]string{"notes": `\u0026`},
			want:  "{\n  \"notes\": \"\\\\u0026\"\n}",
		},
		{
			name:  "control characters stay escaped",
			value: map[string]string{"notes": "tab\there \"quoted\""},
			want:  "{\n  \"notes\": \"tab\\there \\\"quoted\\\"\"\n}",
		},
		{
			name:  "empty list",
			value: []*tasksapi.Task{},
			want:  "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeJSON(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeJSON_CustomMarshaler(t *testing.T) {
	// tasksapi.Task escapes HTML in its own MarshalJSON.
	task := &tasksapi.Task{
		Id:              "t1",
		Title:           "<b>bold</b> & more",
		Notes:           "",
		ForceSendFields: []string{"Notes"},
	}

	got, err := EncodeJSON(task)
	require.NoError(t, err)
	assert.Contains(t, got, `"title": "<b>bold</b> & more"`)
	assert.NotContains(t, got, `\u003c`)

	var decoded tasksapi.Task
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Equal(t, task.Title, decoded.Title)
}
