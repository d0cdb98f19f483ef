// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/hahuyhoang411/tortured-phrase/internal/progress"
	"github.com/hahuyhoang411/tortured-phrase/internal/pubpeer"
	"github.com/hahuyhoang411/tortured-phrase/internal/storage"
	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

// DiscoverConfig holds settings for the discovery phase.
type DiscoverConfig struct {
	// OutputPath is the phrase→links checkpoint file. Prior content is
	// loaded so already-discovered phrases are skipped.
	OutputPath string

	// CheckpointSize is the number of newly processed phrases between
	// full-file checkpoint writes. Must be positive.
	CheckpointSize int

	// Progress receives completed-phrase updates. Nil disables reporting.
	Progress progress.Reporter

	// Logger records retries, failures, and checkpoints.
	Logger zerolog.Logger
}

// DiscoverResult summarizes one discovery run.
type DiscoverResult struct {
	Phrases int // input phrases
	New     int // phrases processed this run
	Failed  int // phrases recorded with an error marker this run
}

// Discover runs phase 1: for every input phrase not present in the prior
// output, search the service and record the candidate link list. A phrase
// whose search fails is recorded with an empty link list and an error
// marker rather than aborting the run. Per-item status goes to w.
func Discover(ctx context.Context, client *pubpeer.Client, phraseList []string, cfg DiscoverConfig, w io.Writer) (DiscoverResult, error) {
	if cfg.CheckpointSize <= 0 {
		return DiscoverResult{}, fmt.Errorf("checkpoint size must be positive, got %d", cfg.CheckpointSize)
	}

	results, processed, err := loadPhraseRecords(cfg.OutputPath)
	if err != nil {
		return DiscoverResult{}, err
	}
	_, statErr := os.Stat(cfg.OutputPath)
	outputExists := statErr == nil

	res := DiscoverResult{Phrases: len(phraseList)}
	already := 0
	for _, phrase := range phraseList {
		if processed[phrase] {
			already++
		}
	}
	report(cfg.Progress, int64(already))

	newItems := 0
	for _, phrase := range phraseList {
		if processed[phrase] {
			continue
		}
		cfg.Logger.Debug().Str("url", client.SearchURL(phrase)).Msg("searching")
		links, err := client.CollectLinks(ctx, phrase)
		switch {
		case err == nil:
			fmt.Fprintf(w, "found:  %s (%d links)\n", phrase, len(links))
			results = append(results, types.PhraseRecord{Phrase: phrase, Links: links})
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return res, err
		default:
			cfg.Logger.Warn().Err(err).Str("phrase", phrase).Msg("search failed")
			fmt.Fprintf(w, "failed: %s (%v)\n", phrase, err)
			results = append(results, types.PhraseRecord{Phrase: phrase, Links: []string{}, Error: err.Error()})
			res.Failed++
		}
		processed[phrase] = true
		newItems++
		res.New = newItems
		report(cfg.Progress, 1)

		if newItems%cfg.CheckpointSize == 0 {
			if err := storage.WriteList(cfg.OutputPath, results); err != nil {
				return res, err
			}
			cfg.Logger.Debug().Int("records", len(results)).Msg("discovery checkpoint written")
		}
	}

	if newItems > 0 || !outputExists {
		if err := storage.WriteList(cfg.OutputPath, results); err != nil {
			return res, err
		}
	}
	fmt.Fprintf(w, "\nDiscovery summary: %d phrases, %d new, %d failed\n", res.Phrases, res.New, res.Failed)
	return res, nil
}

func report(r progress.Reporter, n int64) {
	if r != nil && n > 0 {
		r.Increment(n)
	}
}
