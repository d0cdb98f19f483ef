// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneFor(t *testing.T) {
	title := "A Title"
	original := PublicationDetail{
		PubPeerID:       "ID1",
		PubPeerURL:      "https://pubpeer.com/publications/ID1",
		SourceReference: "https://pubpeer.com/publications/ID1#0",
		Title:           &title,
	}

	clone := original.CloneFor("https://pubpeer.com/publications/ID1#3")
	assert.Equal(t, "https://pubpeer.com/publications/ID1#3", clone.SourceReference)
	assert.Equal(t, "https://pubpeer.com/publications/ID1#0", original.SourceReference)
	assert.Equal(t, original.PubPeerID, clone.PubPeerID)
	assert.Equal(t, original.Title, clone.Title)
}

func TestPublicationDetailJSONShape(t *testing.T) {
	detail := PublicationDetail{
		PubPeerID:       "ID1",
		PubPeerURL:      "https://pubpeer.com/publications/ID1",
		SourceReference: "ID1",
		Authors:         []AuthorInfo{},
		Comments:        []json.RawMessage{},
	}
	data, err := json.Marshal(detail)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Absent optional fields serialize as null, list fields as empty
	// arrays, matching output files written by earlier runs.
	assert.Equal(t, "null", string(decoded["title"]))
	assert.Equal(t, "null", string(decoded["doi"]))
	assert.Equal(t, "[]", string(decoded["authors"]))
	assert.Equal(t, "[]", string(decoded["comments"]))
}
