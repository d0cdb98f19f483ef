// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records exchanged between the PubPeer client,
// the harvest pipeline, and the checkpoint files. JSON field names match
// the output files produced by earlier runs so that resumption works
// against existing data.
package types

import "encoding/json"

// SearchHit is a raw item from one page of the search API. It is never
// persisted; the pipeline converts it to a canonical link immediately.
type SearchHit struct {
	// LinkWithHash is a relative or absolute detail-page link, possibly
	// carrying a #comment fragment.
	LinkWithHash string `json:"link_with_hash"`

	// PubPeerID is the bare record identifier, present when no link is.
	PubPeerID string `json:"pubpeer_id"`

	// Title is the publication title as shown in search results.
	Title string `json:"title"`
}

// PhraseRecord is the discovery-phase output for one phrase. Phrase is the
// unique key across the whole output file.
type PhraseRecord struct {
	Phrase string   `json:"tortured_phrase"`
	Links  []string `json:"pubpeer_links"`

	// Error marks a phrase whose search failed; the links list is empty
	// and the phrase is not revisited on resume.
	Error string `json:"error,omitempty"`
}

// AuthorInfo is a normalized author entry from a detail page. Every field
// is optional in the service payload, so every field is nullable here.
type AuthorInfo struct {
	FirstName    *string         `json:"first_name"`
	LastName     *string         `json:"last_name"`
	DisplayName  *string         `json:"display_name"`
	ORCID        *string         `json:"orcid"`
	Affiliations json.RawMessage `json:"affiliations"`
}

// PublicationDetail is a normalized detail-page record. Identity is
// PubPeerID; SourceReference records which input link produced this copy,
// so cache clones of the same publication differ only in that field.
type PublicationDetail struct {
	PubPeerID       string       `json:"pubpeer_id"`
	PubPeerURL      string       `json:"pubpeer_url"`
	SourceReference string       `json:"source_reference"`
	Title           *string      `json:"title"`
	Abstract        *string      `json:"abstract"`
	PublishedAt     *string      `json:"published_at"`
	DOI             *string      `json:"doi"`
	ArticleURL      *string      `json:"article_url"`
	CommentsTotal   *int64       `json:"comments_total"`
	Journal         *string      `json:"journal"`
	Authors         []AuthorInfo `json:"authors"`

	// Comments is the raw comment timeline. The pipeline stores it
	// verbatim and never inspects individual fields.
	Comments []json.RawMessage `json:"comments"`
}

// CloneFor returns a shallow copy with SourceReference rewritten to
// reference. Slices are shared with the original.
func (d PublicationDetail) CloneFor(reference string) PublicationDetail {
	d.SourceReference = reference
	return d
}

// FailureEntry records a link that has not yet resolved successfully.
// Reference is unique within one record's failure set.
type FailureEntry struct {
	Reference string `json:"reference"`
	Error     string `json:"error"`
}

// EnrichedPhraseRecord is the enrichment-phase output for one phrase.
// Publications never contains two entries with the same PubPeerID, and a
// reference appears in FailedLinks only while it has never succeeded.
type EnrichedPhraseRecord struct {
	Phrase       string              `json:"tortured_phrase"`
	Publications []PublicationDetail `json:"publications"`
	FailedLinks  []FailureEntry      `json:"failed_links,omitempty"`
}
