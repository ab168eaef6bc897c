package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, false, FormatText)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("shown", Account("work"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line should be filtered at info level")
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "account=work") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestNewLogger_JSONDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, true, "JSON")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("listing", TaskList("list1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level = %v, want DEBUG", entry["level"])
	}
	if entry[KeyTaskList] != "list1" {
		t.Errorf("%s = %v, want list1", KeyTaskList, entry[KeyTaskList])
	}
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	if _, err := NewLogger(&bytes.Buffer{}, false, "xml"); err == nil {
		t.Error("expected an error for unknown format")
	}
}

func TestWithComponentAndTool(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithTool(WithComponent(logger, "tools"), "tasks_create_task").Info("called")

	out := buf.String()
	if !strings.Contains(out, "component=tools") {
		t.Errorf("missing component in %q", out)
	}
	if !strings.Contains(out, "tool=tasks_create_task") {
		t.Errorf("missing tool in %q", out)
	}
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{Operation("list"), KeyOperation, "list"},
		{Account("default"), KeyAccount, "default"},
		{Tool("tasks_list_tasks"), KeyTool, "tasks_list_tasks"},
		{TaskList("list1"), KeyTaskList, "list1"},
		{Task("task1"), KeyTask, "task1"},
		{Status("success"), KeyStatus, "success"},
	}

	for _, tt := range tests {
		if tt.attr.Key != tt.wantKey {
			t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
		}
		if tt.attr.Value.String() != tt.wantVal {
			t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantVal)
		}
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError || attr.Value.String() != "boom" {
		t.Errorf("Err() = %v", attr)
	}

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("ok", Err(nil))
	if strings.Contains(buf.String(), KeyError) {
		t.Errorf("nil error should be omitted, got %q", buf.String())
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q", got)
	}
	got := SanitizeToken("ya29.secret")
	if got != "[token:11 chars]" {
		t.Errorf("SanitizeToken() = %q", got)
	}
	if strings.Contains(got, "ya29") {
		t.Error("token content leaked")
	}
}
