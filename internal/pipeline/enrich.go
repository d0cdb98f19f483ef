// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/hahuyhoang411/tortured-phrase/internal/progress"
	"github.com/hahuyhoang411/tortured-phrase/internal/pubpeer"
	"github.com/hahuyhoang411/tortured-phrase/internal/storage"
	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

// EnrichConfig holds settings for the enrichment phase.
type EnrichConfig struct {
	// LinksPath is the discovery output to read phrase→links from.
	LinksPath string

	// OutputPath is the enriched checkpoint file, loaded for resumption
	// and overwritten at every checkpoint.
	OutputPath string

	// CheckpointSize is the number of fully processed phrases between
	// checkpoint writes. Must be positive.
	CheckpointSize int

	// Progress receives completed-phrase updates. Nil disables reporting.
	Progress progress.Reporter

	// Logger records retries, failures, and checkpoints.
	Logger zerolog.Logger
}

// EnrichResult summarizes one enrichment run.
type EnrichResult struct {
	Phrases      int // phrase entries processed
	Publications int // publications appended this run
	Fetches      int // detail pages fetched over the network
	CacheHits    int // publications cloned from the cross-phrase cache
	Failures     int // failure entries recorded this run
}

// Enrich runs phase 2: for every phrase from the discovery output, turn
// its links into deduplicated publication details. Ids already attached
// to the phrase are skipped, ids seen under any phrase this run are
// cloned from the cache with the new source reference, and per-link
// failures become failure entries instead of aborting. Phrases present
// in prior output but absent from the discovery input are preserved at
// the tail so a shrinking input never silently drops data.
func Enrich(ctx context.Context, client *pubpeer.Client, cfg EnrichConfig, w io.Writer) (EnrichResult, error) {
	if cfg.CheckpointSize <= 0 {
		return EnrichResult{}, fmt.Errorf("checkpoint size must be positive, got %d", cfg.CheckpointSize)
	}

	entries, err := loadPhraseLinks(cfg.LinksPath)
	if err != nil {
		return EnrichResult{}, err
	}
	existing, index, cache, err := loadExistingDetails(cfg.OutputPath)
	if err != nil {
		return EnrichResult{}, err
	}

	// Current-input phrases first, in input order; stale phrases kept at
	// the tail.
	results := []*types.EnrichedPhraseRecord{}
	seen := make(map[string]bool)
	for _, entry := range entries {
		record, ok := index[entry.Phrase]
		if !ok {
			record = &types.EnrichedPhraseRecord{
				Phrase:       entry.Phrase,
				Publications: []types.PublicationDetail{},
			}
			index[entry.Phrase] = record
		}
		if !seen[entry.Phrase] {
			results = append(results, record)
			seen[entry.Phrase] = true
		}
	}
	for _, record := range existing {
		if !seen[record.Phrase] {
			results = append(results, record)
			seen[record.Phrase] = true
		}
	}

	res := EnrichResult{Phrases: len(entries)}
	processed := 0
	for _, entry := range entries {
		record := index[entry.Phrase]
		if record.Publications == nil {
			record.Publications = []types.PublicationDetail{}
		}
		existingIDs := make(map[string]bool, len(record.Publications))
		for _, pub := range record.Publications {
			if pub.PubPeerID != "" {
				existingIDs[pub.PubPeerID] = true
			}
		}

		for _, link := range entry.Links {
			id, err := pubpeer.ExtractPublicationID(link)
			if err != nil {
				RecordFailure(record, link, err.Error())
				res.Failures++
				continue
			}
			if existingIDs[id] {
				ClearFailure(record, link)
				continue
			}
			if cached, ok := cache[id]; ok {
				record.Publications = append(record.Publications, cached.CloneFor(link))
				existingIDs[id] = true
				ClearFailure(record, link)
				res.CacheHits++
				res.Publications++
				continue
			}

			detail, err := client.FetchDetail(ctx, link)
			switch {
			case err == nil:
				cache[id] = *detail
				record.Publications = append(record.Publications, *detail)
				existingIDs[id] = true
				ClearFailure(record, link)
				res.Fetches++
				res.Publications++
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return res, err
			default:
				cfg.Logger.Warn().Err(err).Str("link", link).Msg("detail fetch failed")
				fmt.Fprintf(w, "failed: %s (%v)\n", link, err)
				RecordFailure(record, link, err.Error())
				res.Failures++
			}
		}

		processed++
		report(cfg.Progress, 1)
		if processed%cfg.CheckpointSize == 0 {
			if err := storage.WriteList(cfg.OutputPath, results); err != nil {
				return res, err
			}
			cfg.Logger.Debug().Int("records", len(results)).Msg("enrichment checkpoint written")
		}
	}

	if err := storage.WriteList(cfg.OutputPath, results); err != nil {
		return res, err
	}
	fmt.Fprintf(w, "\nEnrichment summary: %d phrases, %d publications (%d fetched, %d cached), %d failures\n",
		res.Phrases, res.Publications, res.Fetches, res.CacheHits, res.Failures)
	return res, nil
}
