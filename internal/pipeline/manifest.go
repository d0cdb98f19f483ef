// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Manifest is the on-disk summary of one completed pipeline phase,
// written next to the output file. It lets a later run (or a human) see
// what produced the checkpoint without re-parsing it.
type Manifest struct {
	Phase        string    `yaml:"phase"`
	InputPath    string    `yaml:"input_path,omitempty"`
	OutputPath   string    `yaml:"output_path"`
	Phrases      int       `yaml:"phrases"`
	NewItems     int       `yaml:"new_items,omitempty"`
	Publications int       `yaml:"publications,omitempty"`
	Fetches      int       `yaml:"fetches,omitempty"`
	CacheHits    int       `yaml:"cache_hits,omitempty"`
	Failures     int       `yaml:"failures"`
	Timestamp    time.Time `yaml:"timestamp"`
}

// ManifestPath returns the conventional manifest location for an output
// file: the same path with the extension replaced by .manifest.yaml.
func ManifestPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".manifest.yaml"
}

// WriteManifest saves the manifest, creating parent directories as needed.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a previously written manifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
