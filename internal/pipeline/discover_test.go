// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hahuyhoang411/tortured-phrase/internal/pubpeer"
	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

// discoverServer answers searches with one hit per phrase, except the
// phrase "broken" which always fails. It counts search requests.
func discoverServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	searches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<html><head><meta name="csrf-token" content="tok"></head></html>`)
		case "/api/search":
			searches++
			q := r.URL.Query().Get("q")
			if q == "broken" {
				http.NotFound(w, r)
				return
			}
			if r.URL.Query().Get("from") != "" {
				json.NewEncoder(w).Encode(map[string]any{"publications": []any{}, "meta": map[string]any{}})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"publications": []map[string]string{{"link_with_hash": "/publications/" + q + "-id#1"}},
				"meta":         map[string]int{"total": 1},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	return srv, &searches
}

func discoverClient(baseURL string) *pubpeer.Client {
	cfg := types.DefaultClientConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	cfg.Delay = 0
	cfg.RetryBackoff = 0
	cfg.MaxRetries = 1
	return pubpeer.New(cfg, zerolog.Nop())
}

func TestDiscover(t *testing.T) {
	srv, _ := discoverServer(t)
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "results.json")
	cfg := DiscoverConfig{OutputPath: output, CheckpointSize: 10, Logger: zerolog.Nop()}

	var out bytes.Buffer
	result, err := Discover(context.Background(), discoverClient(srv.URL), []string{"alpha", "broken"}, cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, DiscoverResult{Phrases: 2, New: 2, Failed: 1}, result)

	records, _, err := loadPhraseRecords(output)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "alpha", records[0].Phrase)
	assert.Equal(t, []string{srv.URL + "/publications/alpha-id#1"}, records[0].Links)
	assert.Empty(t, records[0].Error)

	assert.Equal(t, "broken", records[1].Phrase)
	assert.Empty(t, records[1].Links)
	assert.NotEmpty(t, records[1].Error)

	// The failed phrase still serializes an empty link list, not null.
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pubpeer_links": []`)
}

func TestDiscoverResumesWithoutRefetching(t *testing.T) {
	srv, searches := discoverServer(t)
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "results.json")
	cfg := DiscoverConfig{OutputPath: output, CheckpointSize: 10, Logger: zerolog.Nop()}

	var out bytes.Buffer
	_, err := Discover(context.Background(), discoverClient(srv.URL), []string{"alpha", "broken"}, cfg, &out)
	require.NoError(t, err)
	after := *searches

	// Second run adds one phrase; alpha and broken are not searched again.
	result, err := Discover(context.Background(), discoverClient(srv.URL), []string{"alpha", "broken", "beta"}, cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.New)
	assert.Equal(t, after+1, *searches)

	records, _, err := loadPhraseRecords(output)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "beta", records[2].Phrase)
}

func TestDiscoverWritesEmptyOutputOnFirstRun(t *testing.T) {
	srv, _ := discoverServer(t)
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "results.json")
	cfg := DiscoverConfig{OutputPath: output, CheckpointSize: 10, Logger: zerolog.Nop()}

	var out bytes.Buffer
	_, err := Discover(context.Background(), discoverClient(srv.URL), nil, cfg, &out)
	require.NoError(t, err)

	// No phrases, but the output file exists and holds an empty array.
	items, _, err := loadPhraseRecords(output)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.FileExists(t, output)
}

func TestDiscoverRejectsBadCheckpointSize(t *testing.T) {
	cfg := DiscoverConfig{OutputPath: "x.json", CheckpointSize: 0, Logger: zerolog.Nop()}
	_, err := Discover(context.Background(), nil, nil, cfg, &bytes.Buffer{})
	assert.Error(t, err)
}
