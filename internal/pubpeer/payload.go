// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubpeer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

// Detail pages embed their data as attribute-bound JSON blobs on two
// elements: `:data-publication` carries the publication metadata and
// `:data-comments` carries the comment timeline. The publication blob is
// required; the comments blob defaults to an empty list.
const (
	publicationAttr = "data-publication"
	commentsAttr    = "data-comments"
)

// publicationPayload mirrors the decoded publication blob. The service
// payload is loosely typed, so list fields stay raw until validated.
type publicationPayload struct {
	Title         *string         `json:"title"`
	Abstract      *string         `json:"abstract"`
	PublishedAt   *string         `json:"published_at"`
	URL           *string         `json:"url"`
	CommentsTotal *int64          `json:"comments_total"`
	Journals      json.RawMessage `json:"journals"`
	Authors       json.RawMessage `json:"authors"`
}

// ParseDetailPage extracts the embedded payloads from a detail page and
// returns the normalized record stamped with the canonical URL and the
// input reference that produced it.
func ParseDetailPage(page, id, canonicalURL, reference string) (*types.PublicationDetail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing detail page: %w", err)
	}

	raw, ok := embeddedAttr(doc, publicationAttr)
	if !ok {
		return nil, ErrMissingPayload
	}
	var payload publicationPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decoding publication payload: %w", err)
	}

	articleURL := normalizeURL(payload.URL)
	detail := &types.PublicationDetail{
		PubPeerID:       id,
		PubPeerURL:      canonicalURL,
		SourceReference: reference,
		Title:           payload.Title,
		Abstract:        emptyToNil(payload.Abstract),
		PublishedAt:     payload.PublishedAt,
		ArticleURL:      articleURL,
		CommentsTotal:   payload.CommentsTotal,
		Journal:         parseJournal(payload.Journals),
		Authors:         parseAuthors(payload.Authors),
		Comments:        parseComments(doc),
	}
	if articleURL != nil {
		detail.DOI = ExtractDOI(*articleURL)
	}
	return detail, nil
}

// embeddedAttr returns the HTML-unescaped value of the `:name` attribute
// on the first element carrying it. Empty values count as absent.
func embeddedAttr(doc *goquery.Document, name string) (string, bool) {
	key := ":" + name
	var value string
	found := false
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr(key); ok && v != "" {
			value = v
			found = true
			return false
		}
		return true
	})
	return value, found
}

// parseComments decodes the comment timeline blob. A missing blob or a
// blob that is not a JSON array yields an empty timeline.
func parseComments(doc *goquery.Document) []json.RawMessage {
	raw, ok := embeddedAttr(doc, commentsAttr)
	if !ok {
		return []json.RawMessage{}
	}
	var comments []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &comments); err != nil || comments == nil {
		return []json.RawMessage{}
	}
	return comments
}

// doiPrefixes are the resolver hosts recognized when deriving a DOI from
// the article URL. Matching is case-insensitive on the prefix; the DOI
// itself keeps the original casing.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
}

// ExtractDOI returns the DOI portion of a doi.org or dx.doi.org article
// URL, or nil when the URL points elsewhere.
func ExtractDOI(articleURL string) *string {
	lowered := strings.ToLower(articleURL)
	for _, prefix := range doiPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			doi := articleURL[len(prefix):]
			return &doi
		}
	}
	return nil
}

// parseJournal returns the title of the first journal entry, or nil when
// the journal list is missing, empty, or malformed.
func parseJournal(raw json.RawMessage) *string {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || len(entries) == 0 {
		return nil
	}
	var first struct {
		Title *string `json:"title"`
	}
	if err := json.Unmarshal(entries[0], &first); err != nil {
		return nil
	}
	return first.Title
}

// parseAuthors normalizes the author list field by field. Entries that are
// not JSON objects are dropped; missing fields stay null.
func parseAuthors(raw json.RawMessage) []types.AuthorInfo {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []types.AuthorInfo{}
	}
	authors := make([]types.AuthorInfo, 0, len(entries))
	for _, entry := range entries {
		trimmed := bytes.TrimSpace(entry)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var a types.AuthorInfo
		if err := json.Unmarshal(trimmed, &a); err != nil {
			continue
		}
		authors = append(authors, a)
	}
	return authors
}

func normalizeURL(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func emptyToNil(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}
