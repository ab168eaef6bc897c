package common

import (
	"fmt"
	"math"
)

// RequiredString returns a non-empty string argument.
func RequiredString(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", fmt.Errorf("%s is required", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	if s == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return s, nil
}

// OptionalString returns nil when the argument is absent. A present empty
// string is returned as a pointer to "", which lets callers clear a field.
func OptionalString(args map[string]any, name string) (*string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string", name)
	}
	return &s, nil
}

// OptionalBool returns nil when the argument is absent.
func OptionalBool(args map[string]any, name string) (*bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("%s must be a boolean", name)
	}
	return &b, nil
}

// OptionalInt64 returns nil when the argument is absent. JSON numbers arrive
// as float64 and must be whole.
func OptionalInt64(args map[string]any, name string) (*int64, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}

	var n int64
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || x >= math.MaxInt64 || x < math.MinInt64 {
			return nil, fmt.Errorf("%s must be an integer", name)
		}
		n = int64(x)
	case int:
		n = int64(x)
	case int64:
		n = x
	default:
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &n, nil
}
