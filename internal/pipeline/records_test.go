// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

func TestFailureLifecycle(t *testing.T) {
	record := &types.EnrichedPhraseRecord{Phrase: "p", Publications: []types.PublicationDetail{}}

	RecordFailure(record, "link-a", "boom")
	RecordFailure(record, "link-b", "bang")
	require.Len(t, record.FailedLinks, 2)

	// Same reference again overwrites the message, no duplicate entry.
	RecordFailure(record, "link-a", "boom again")
	require.Len(t, record.FailedLinks, 2)
	assert.Equal(t, "boom again", record.FailedLinks[0].Error)

	ClearFailure(record, "link-a")
	require.Len(t, record.FailedLinks, 1)
	assert.Equal(t, "link-b", record.FailedLinks[0].Reference)

	// Clearing an unknown reference is a no-op.
	ClearFailure(record, "never-seen")
	require.Len(t, record.FailedLinks, 1)

	ClearFailure(record, "link-b")
	assert.Nil(t, record.FailedLinks)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "failed_links", "emptied failure set must drop the key")
}

func TestLoadPhraseLinksSkipsMalformedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	content := `[
		{"tortured_phrase": "good", "pubpeer_links": ["https://x/publications/A", "  ", "https://x/publications/B"]},
		"not an object",
		{"pubpeer_links": ["https://x/publications/C"]},
		{"tortured_phrase": "bad links", "pubpeer_links": "not a list"},
		{"tortured_phrase": "empty", "pubpeer_links": []}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := loadPhraseLinks(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "good", entries[0].Phrase)
	assert.Equal(t, []string{"https://x/publications/A", "https://x/publications/B"}, entries[0].Links)
	assert.Equal(t, "empty", entries[1].Phrase)
	assert.Empty(t, entries[1].Links)
}

func TestLoadExistingDetailsBuildsCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "details.json")
	content := `[
		{
			"tortured_phrase": "first",
			"publications": [
				{"pubpeer_id": "A", "source_reference": "ref-1"},
				"not an object"
			],
			"failed_links": [
				{"reference": "broken-link", "error": "404"},
				{"error": "no reference, dropped"}
			]
		},
		{
			"tortured_phrase": "second",
			"publications": [{"pubpeer_id": "A", "source_reference": "ref-2"}]
		}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, index, cache, err := loadExistingDetails(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := index["first"]
	require.NotNil(t, first)
	require.Len(t, first.Publications, 1)
	require.Len(t, first.FailedLinks, 1)
	assert.Equal(t, "broken-link", first.FailedLinks[0].Reference)

	// The cache keeps the first copy seen for each id.
	cached, ok := cache["A"]
	require.True(t, ok)
	assert.Equal(t, "ref-1", cached.SourceReference)
}
