// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubpeer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailPage = `<html><body><div id="app">
<publication-page
  :data-publication='{"title":"Quantum Widgets Reconsidered","abstract":"A closer look.","published_at":"2021-03-01","url":"https://doi.org/10.1000/xyz123","comments_total":4,"journals":[{"title":"Journal of Widgets"},{"title":"Ignored"}],"authors":[{"first_name":"Ada","last_name":"Lovelace","display_name":"Ada Lovelace","orcid":"0000-0001-2345-6789"},"not an object",{"last_name":"Turing"}]}'
  :data-comments='[{"id":1,"markdown":"First."},{"id":2,"markdown":"Second."}]'>
</publication-page>
</div></body></html>`

func TestParseDetailPage(t *testing.T) {
	detail, err := ParseDetailPage(detailPage, "ID1", "https://pubpeer.com/publications/ID1", "https://pubpeer.com/publications/ID1#0")
	require.NoError(t, err)

	assert.Equal(t, "ID1", detail.PubPeerID)
	assert.Equal(t, "https://pubpeer.com/publications/ID1", detail.PubPeerURL)
	assert.Equal(t, "https://pubpeer.com/publications/ID1#0", detail.SourceReference)

	require.NotNil(t, detail.Title)
	assert.Equal(t, "Quantum Widgets Reconsidered", *detail.Title)
	require.NotNil(t, detail.Abstract)
	assert.Equal(t, "A closer look.", *detail.Abstract)
	require.NotNil(t, detail.PublishedAt)
	assert.Equal(t, "2021-03-01", *detail.PublishedAt)
	require.NotNil(t, detail.ArticleURL)
	assert.Equal(t, "https://doi.org/10.1000/xyz123", *detail.ArticleURL)
	require.NotNil(t, detail.DOI)
	assert.Equal(t, "10.1000/xyz123", *detail.DOI)
	require.NotNil(t, detail.CommentsTotal)
	assert.Equal(t, int64(4), *detail.CommentsTotal)
	require.NotNil(t, detail.Journal)
	assert.Equal(t, "Journal of Widgets", *detail.Journal)

	// The string entry in the author list is dropped; the partial object
	// keeps its missing fields null.
	require.Len(t, detail.Authors, 2)
	require.NotNil(t, detail.Authors[0].FirstName)
	assert.Equal(t, "Ada", *detail.Authors[0].FirstName)
	assert.Nil(t, detail.Authors[1].FirstName)
	require.NotNil(t, detail.Authors[1].LastName)
	assert.Equal(t, "Turing", *detail.Authors[1].LastName)

	assert.Len(t, detail.Comments, 2)
}

func TestParseDetailPageMissingPayload(t *testing.T) {
	page := `<html><body><div id="app">nothing embedded here</div></body></html>`
	_, err := ParseDetailPage(page, "ID1", "https://pubpeer.com/publications/ID1", "ID1")
	assert.ErrorIs(t, err, ErrMissingPayload)
}

func TestParseDetailPageMinimalPayload(t *testing.T) {
	page := `<html><body><div :data-publication='{"title":"Bare","abstract":""}'></div></body></html>`
	detail, err := ParseDetailPage(page, "ID2", "https://pubpeer.com/publications/ID2", "ID2")
	require.NoError(t, err)

	require.NotNil(t, detail.Title)
	assert.Equal(t, "Bare", *detail.Title)
	assert.Nil(t, detail.Abstract, "empty abstract should become null")
	assert.Nil(t, detail.PublishedAt)
	assert.Nil(t, detail.ArticleURL)
	assert.Nil(t, detail.DOI)
	assert.Nil(t, detail.Journal)
	assert.Empty(t, detail.Authors)
	assert.Empty(t, detail.Comments)
}

func TestParseDetailPageMalformedComments(t *testing.T) {
	page := `<html><body><div :data-publication='{"title":"T"}' :data-comments='{"not":"a list"}'></div></body></html>`
	detail, err := ParseDetailPage(page, "ID3", "https://pubpeer.com/publications/ID3", "ID3")
	require.NoError(t, err)
	assert.Empty(t, detail.Comments)
}

func TestExtractDOI(t *testing.T) {
	tests := []struct {
		url  string
		want string // empty means nil expected
	}{
		{"https://doi.org/10.1000/abc", "10.1000/abc"},
		{"http://doi.org/10.1000/abc", "10.1000/abc"},
		{"https://dx.doi.org/10.1000/abc", "10.1000/abc"},
		{"http://dx.doi.org/10.1000/abc", "10.1000/abc"},
		{"HTTPS://DOI.ORG/10.1000/AbC", "10.1000/AbC"},
		{"https://publisher.example.com/article/1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := ExtractDOI(tt.url)
		if tt.want == "" {
			assert.Nil(t, got, "ExtractDOI(%q)", tt.url)
			continue
		}
		require.NotNil(t, got, "ExtractDOI(%q)", tt.url)
		assert.Equal(t, tt.want, *got, "ExtractDOI(%q)", tt.url)
	}
}
