/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package params

import (
	"fmt"
	"maps"
	"strings"
)

// Extract returns the argument called name as a T.
// Missing arguments and arguments of the wrong type are errors.
func Extract[T any](args map[string]any, name string) (T, error) {
	value, ok := args[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s parameter is required", name)
	}
	return coerce[T](name, value)
}

// ExtractOptional behaves like Extract but returns defaultValue when the
// argument is absent.
func ExtractOptional[T any](args map[string]any, name string, defaultValue T) (T, error) {
	value, ok := args[name]
	if !ok {
		return defaultValue, nil
	}
	return coerce[T](name, value)
}

// ExtractNonEmpty is Extract for strings that must carry something other than whitespace.
func ExtractNonEmpty(args map[string]any, name string) (string, error) {
	v, err := Extract[string](args, name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s parameter must not be empty", name)
	}
	return v, nil
}

func coerce[T any](name string, value any) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	// JSON decoding yields float64 for every number.
	var zero T
	if f, ok := value.(float64); ok {
		switch any(zero).(type) {
		case int:
			return any(int(f)).(T), nil
		case int32:
			return any(int32(f)).(T), nil
		case int64:
			return any(int64(f)).(T), nil
		}
	}
	return zero, fmt.Errorf("%s parameter must be of type %T, got %T", name, zero, value)
}

// Error returns the payload reported to the model when a call fails.
func Error(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

// ErrorWithContext is Error for an existing error, with extra fields such as
// the path the call was about.
func ErrorWithContext(err error, context map[string]any) map[string]any {
	resp := make(map[string]any, len(context)+1)
	maps.Copy(resp, context)
	resp["error"] = err.Error()
	return resp
}
