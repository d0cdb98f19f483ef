// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hahuyhoang411/tortured-phrase/internal/pipeline"
	"github.com/hahuyhoang411/tortured-phrase/internal/progress"
	"github.com/hahuyhoang411/tortured-phrase/internal/pubpeer"
	"github.com/hahuyhoang411/tortured-phrase/internal/storage"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch full publication details for every discovered link",
	Long: `Enrich reads the discovery output, fetches the detail page behind every
link, and writes deduplicated publication records per phrase. Publications
already in the output are kept, ids seen under another phrase are cloned
from an in-run cache, and per-link failures are recorded next to the
phrase so a later run can retry them.`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().StringP("input", "i", "results/pubpeer_results.json", "discovery output to enrich")
	enrichCmd.Flags().StringP("output", "o", "results/pubpeer_publications.json", "JSON output / checkpoint file")
	enrichCmd.Flags().Int("checkpoint-size", 25, "phrases between checkpoint writes")
	addClientFlags(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	checkpointSize, _ := cmd.Flags().GetInt("checkpoint-size")

	items, err := storage.ReadList(input)
	if err != nil {
		return fmt.Errorf("loading discovery output: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No discovery records in %s, nothing to enrich\n", input)
		return nil
	}

	client := pubpeer.New(clientConfig(cmd), logger)

	logger.Info().
		Int("records", len(items)).
		Str("output", output).
		Msg("starting enrichment")

	tracker := progress.NewTracker("Enriching", int64(len(items)), cmd.ErrOrStderr())
	result, runErr := pipeline.Enrich(cmd.Context(), client, pipeline.EnrichConfig{
		LinksPath:      input,
		OutputPath:     output,
		CheckpointSize: checkpointSize,
		Progress:       tracker,
		Logger:         logger,
	}, cmd.OutOrStdout())
	tracker.Done()
	if runErr != nil {
		return runErr
	}

	manifest := pipeline.Manifest{
		Phase:        "enrich",
		InputPath:    input,
		OutputPath:   output,
		Phrases:      result.Phrases,
		Publications: result.Publications,
		Fetches:      result.Fetches,
		CacheHits:    result.CacheHits,
		Failures:     result.Failures,
		Timestamp:    time.Now().UTC(),
	}
	if err := pipeline.WriteManifest(pipeline.ManifestPath(output), manifest); err != nil {
		logger.Warn().Err(err).Msg("writing run manifest failed")
	}
	return nil
}
