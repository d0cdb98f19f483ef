// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives the two-phase harvest: phrase discovery against
// the search API, then link enrichment against detail pages. Both phases
// checkpoint their full output periodically and resume against prior
// output without duplicating work.
package pipeline

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/hahuyhoang411/tortured-phrase/internal/storage"
	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

// RecordFailure adds a failure entry for reference, or overwrites the
// error message of an existing one.
func RecordFailure(record *types.EnrichedPhraseRecord, reference, message string) {
	for i := range record.FailedLinks {
		if record.FailedLinks[i].Reference == reference {
			record.FailedLinks[i].Error = message
			return
		}
	}
	record.FailedLinks = append(record.FailedLinks, types.FailureEntry{
		Reference: reference,
		Error:     message,
	})
}

// ClearFailure removes the failure entry for reference once it resolves.
// An emptied set drops the failed_links field from the output entirely.
func ClearFailure(record *types.EnrichedPhraseRecord, reference string) {
	if len(record.FailedLinks) == 0 {
		return
	}
	kept := record.FailedLinks[:0]
	for _, f := range record.FailedLinks {
		if f.Reference != reference {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		record.FailedLinks = nil
		return
	}
	record.FailedLinks = kept
}

// loadPhraseRecords reads prior discovery output. Items that are not
// objects are skipped; the processed set contains every phrase already
// present, including ones recorded with an error marker.
func loadPhraseRecords(path string) ([]types.PhraseRecord, map[string]bool, error) {
	items, err := storage.ReadList(path)
	if err != nil {
		return nil, nil, err
	}
	records := []types.PhraseRecord{}
	processed := make(map[string]bool)
	for _, item := range items {
		var record types.PhraseRecord
		if err := json.Unmarshal(item, &record); err != nil {
			continue
		}
		if record.Phrase != "" {
			processed[record.Phrase] = true
		}
		records = append(records, record)
	}
	return records, processed, nil
}

// phraseLinks is one phrase with its candidate links from phase 1.
type phraseLinks struct {
	Phrase string
	Links  []string
}

// loadPhraseLinks reads discovery output for enrichment. Entries without
// a string phrase or a link list are skipped; blank links are dropped.
func loadPhraseLinks(path string) ([]phraseLinks, error) {
	items, err := storage.ReadList(path)
	if err != nil {
		return nil, err
	}
	entries := []phraseLinks{}
	for _, item := range items {
		var probe struct {
			Phrase *string         `json:"tortured_phrase"`
			Links  json.RawMessage `json:"pubpeer_links"`
		}
		if err := json.Unmarshal(item, &probe); err != nil || probe.Phrase == nil {
			continue
		}
		var rawLinks []json.RawMessage
		if err := json.Unmarshal(probe.Links, &rawLinks); err != nil {
			continue
		}
		links := []string{}
		for _, raw := range rawLinks {
			var link string
			if err := json.Unmarshal(raw, &link); err != nil {
				continue
			}
			if strings.TrimSpace(link) == "" {
				continue
			}
			links = append(links, link)
		}
		entries = append(entries, phraseLinks{Phrase: *probe.Phrase, Links: links})
	}
	return entries, nil
}

// loadExistingDetails reads prior enrichment output and builds the phrase
// index and the cross-phrase id cache. The cache keeps the first copy
// seen for each id, matching the order details were originally fetched.
func loadExistingDetails(path string) ([]*types.EnrichedPhraseRecord, map[string]*types.EnrichedPhraseRecord, map[string]types.PublicationDetail, error) {
	items, err := storage.ReadList(path)
	if err != nil {
		return nil, nil, nil, err
	}
	records := []*types.EnrichedPhraseRecord{}
	index := make(map[string]*types.EnrichedPhraseRecord)
	cache := make(map[string]types.PublicationDetail)
	for _, item := range items {
		var probe struct {
			Phrase       *string         `json:"tortured_phrase"`
			Publications json.RawMessage `json:"publications"`
			FailedLinks  json.RawMessage `json:"failed_links"`
		}
		if err := json.Unmarshal(item, &probe); err != nil || probe.Phrase == nil {
			continue
		}
		record := &types.EnrichedPhraseRecord{
			Phrase:       *probe.Phrase,
			Publications: []types.PublicationDetail{},
		}

		var rawPubs []json.RawMessage
		if json.Unmarshal(probe.Publications, &rawPubs) == nil {
			for _, raw := range rawPubs {
				trimmed := bytes.TrimSpace(raw)
				if len(trimmed) == 0 || trimmed[0] != '{' {
					continue
				}
				var pub types.PublicationDetail
				if err := json.Unmarshal(trimmed, &pub); err != nil {
					continue
				}
				if pub.PubPeerID != "" {
					if _, ok := cache[pub.PubPeerID]; !ok {
						cache[pub.PubPeerID] = pub
					}
				}
				record.Publications = append(record.Publications, pub)
			}
		}

		var rawFails []json.RawMessage
		if json.Unmarshal(probe.FailedLinks, &rawFails) == nil {
			for _, raw := range rawFails {
				var entry types.FailureEntry
				if err := json.Unmarshal(raw, &entry); err != nil || entry.Reference == "" {
					continue
				}
				record.FailedLinks = append(record.FailedLinks, entry)
			}
		}

		index[record.Phrase] = record
		records = append(records, record)
	}
	return records, index, cache, nil
}
