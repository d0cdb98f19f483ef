// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package phrases loads the query phrase list from a tabular input file.
package phrases

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads the named column from a CSV file and returns the phrases
// trimmed, de-blanked, and deduplicated in first-seen order. A positive
// limit truncates the result.
func Load(path, column string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	phrases, err := load(f, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if limit > 0 && len(phrases) > limit {
		phrases = phrases[:limit]
	}
	return phrases, nil
}

func load(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("column %q not found", column)
	}

	seen := make(map[string]bool)
	var phrases []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if col >= len(row) {
			continue
		}
		phrase := strings.TrimSpace(row[col])
		if phrase == "" || seen[phrase] {
			continue
		}
		seen[phrase] = true
		phrases = append(phrases, phrase)
	}
	return phrases, nil
}
