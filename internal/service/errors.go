package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrVersionConflict is returned when a save is attempted against a
	// base version that is no longer the live one. The caller resolves it
	// by re-fetching the latest version and re-applying the change; the
	// service never retries or merges on its behalf.
	ErrVersionConflict = errors.New("entry was modified by someone else, re-fetch the latest version")
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
