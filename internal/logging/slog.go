package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Attribute keys shared by every log line.
const (
	KeyOperation = "operation"
	KeyAccount   = "account"
	KeyTool      = "tool"
	KeyTaskList  = "task_list_id"
	KeyTask      = "task_id"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyComponent = "component"
)

// Output formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger builds a slog.Logger writing to w. Debug lowers the level to
// debug; format is FormatText or FormatJSON.
func NewLogger(w io.Writer, debug bool, format string) (*slog.Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q, must be one of: text, json", format)
	}
}

// WithComponent returns a logger tagged with the component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String(KeyComponent, component))
}

// WithTool returns a logger tagged with the tool name.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

func Account(account string) slog.Attr {
	return slog.String(KeyAccount, account)
}

func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

func TaskList(id string) slog.Attr {
	return slog.String(KeyTaskList, id)
}

func Task(id string) slog.Attr {
	return slog.String(KeyTask, id)
}

func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns the error attribute, or an empty group that slog drops when
// err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeToken describes a token by length only.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
