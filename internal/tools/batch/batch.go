package batch

import (
	"context"
	"fmt"

	"github.com/teemow/workspace-tasks/internal/tasks"
)

// Item statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of the operation for one ID.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Summary aggregates the results of a batch.
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// IDs reads args[name] as a single string or an array of strings.
func IDs(args map[string]any, name string) ([]string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s is required", name)
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", name)
		}
		return []string{v}, nil
	case []string:
		return checkIDs(v, name)
	case []any:
		ids := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			ids = append(ids, s)
		}
		return checkIDs(ids, name)
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}
}

func checkIDs(ids []string, name string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", name)
	}
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
		}
	}
	return ids, nil
}

// Run calls fn for every ID in order. Once ctx is done the remaining IDs
// fail with the context error without calling fn.
func Run(ctx context.Context, ids []string, fn func(ctx context.Context, id string) (string, error)) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		out, err := fn(ctx, id)
		if err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		results = append(results, NewSuccessResult(id, out))
	}
	return results
}

// Summarize counts successes and failures.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), Results: results}
	for _, r := range results {
		if r.Status == StatusSuccess {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}

// JSON renders the summary in the same format as the task operation results.
func (s Summary) JSON() (string, error) {
	return tasks.EncodeJSON(s)
}

// NewSuccessResult records message as the output for id.
func NewSuccessResult(id, message string) Result {
	return Result{ID: id, Status: StatusSuccess, Result: message}
}

// NewErrorResult records the failure of id.
func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: StatusError, Error: err.Error()}
}
