// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage persists checkpoint files as JSON arrays. Every write
// is a full-file rewrite of a complete, parsed array, so an interrupted
// run loses at most one checkpoint interval and never corrupts the file.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
)

// ErrInvalidPayload marks an attempt to persist something other than a
// list. This is a programmer error, not an I/O condition.
var ErrInvalidPayload = errors.New("checkpoint payload must be a JSON array")

// ReadList reads a JSON array from path. A missing or blank file yields
// an empty list; a file holding a non-array value is an error.
func ReadList(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []json.RawMessage{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

// WriteList overwrites path with items as an indented JSON array,
// creating parent directories as needed. Passing a non-slice value
// returns ErrInvalidPayload.
func WriteList(path string, items any) error {
	rv := reflect.ValueOf(items)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return fmt.Errorf("%w, got %T", ErrInvalidPayload, items)
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		items = []any{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
