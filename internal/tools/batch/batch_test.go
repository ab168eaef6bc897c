package batch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestIDs(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    []string
		wantErr bool
	}{
		{name: "single string", args: map[string]any{"taskId": "t1"}, want: []string{"t1"}},
		{name: "array", args: map[string]any{"taskId": []any{"t1", "t2"}}, want: []string{"t1", "t2"}},
		{name: "string slice", args: map[string]any{"taskId": []string{"t1"}}, want: []string{"t1"}},
		{name: "missing", args: map[string]any{}, wantErr: true},
		{name: "nil", args: map[string]any{"taskId": nil}, wantErr: true},
		{name: "empty string", args: map[string]any{"taskId": ""}, wantErr: true},
		{name: "empty array", args: map[string]any{"taskId": []any{}}, wantErr: true},
		{name: "non-string item", args: map[string]any{"taskId": []any{"t1", 2.0}}, wantErr: true},
		{name: "empty item", args: map[string]any{"taskId": []any{"t1", ""}}, wantErr: true},
		{name: "number", args: map[string]any{"taskId": 12.0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IDs(tt.args, "taskId")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("IDs() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("IDs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("IDs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("IDs()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRun(t *testing.T) {
	var calls []string
	results := Run(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, id string) (string, error) {
		calls = append(calls, id)
		if id == "b" {
			return "", errors.New("not found")
		}
		return "done " + id, nil
	})

	if len(calls) != 3 {
		t.Fatalf("fn called %d times, want 3", len(calls))
	}
	if results[0].Status != StatusSuccess || results[0].Result != "done a" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Status != StatusError || results[1].Error != "not found" {
		t.Errorf("results[1] = %+v", results[1])
	}
	if results[2].Status != StatusSuccess {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	results := Run(ctx, []string{"a", "b"}, func(_ context.Context, id string) (string, error) {
		cancel()
		return "ok", nil
	})

	if results[0].Status != StatusSuccess {
		t.Errorf("results[0] = %+v, want success", results[0])
	}
	if results[1].Status != StatusError || results[1].Error != context.Canceled.Error() {
		t.Errorf("results[1] = %+v, want context canceled", results[1])
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{
		NewSuccessResult("a", "ok"),
		NewErrorResult("b", errors.New("boom")),
		NewSuccessResult("c", "ok"),
	})

	if s.Total != 3 || s.Successful != 2 || s.Failed != 1 {
		t.Errorf("Summarize() = %+v", s)
	}

	data, err := s.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	var decoded Summary
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		t.Fatalf("JSON() is not valid JSON: %v", err)
	}
	if decoded.Results[1].Error != "boom" {
		t.Errorf("decoded error = %q, want boom", decoded.Results[1].Error)
	}
}

func TestSummary_JSON_KeepsHTMLCharacters(t *testing.T) {
	s := Summarize([]Result{NewSuccessResult("t1", `{"title": "Milk & eggs <2>"}`)})

	data, err := s.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if !strings.Contains(data, `"result": "{\"title\": \"Milk & eggs <2>\"}"`) {
		t.Errorf("JSON() = %s, want unescaped & < >", data)
	}
}
