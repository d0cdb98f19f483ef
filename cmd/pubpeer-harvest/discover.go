// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hahuyhoang411/tortured-phrase/internal/phrases"
	"github.com/hahuyhoang411/tortured-phrase/internal/pipeline"
	"github.com/hahuyhoang411/tortured-phrase/internal/progress"
	"github.com/hahuyhoang411/tortured-phrase/internal/pubpeer"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search the service for every input phrase and record candidate links",
	Long: `Discover reads phrases from a CSV column, searches the service for each
one, and records the matching publication links as a JSON array. Phrases
already present in the output file are skipped, so an interrupted run can
be resumed by re-running the same command.`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringP("input", "i", "data/tortured.csv", "CSV file with the phrase column")
	discoverCmd.Flags().String("column", "tortured_phrase", "CSV column holding the phrases")
	discoverCmd.Flags().StringP("output", "o", "results/pubpeer_results.json", "JSON output / checkpoint file")
	discoverCmd.Flags().Int("limit", 0, "process only the first N distinct phrases (0 = all)")
	discoverCmd.Flags().Int("max-results", 0, "cap search hits per phrase (0 = unlimited)")
	discoverCmd.Flags().Int("checkpoint-size", 50, "phrases between checkpoint writes")
	addClientFlags(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	column, _ := cmd.Flags().GetString("column")
	output, _ := cmd.Flags().GetString("output")
	limit, _ := cmd.Flags().GetInt("limit")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	checkpointSize, _ := cmd.Flags().GetInt("checkpoint-size")

	phraseList, err := phrases.Load(input, column, limit)
	if err != nil {
		return fmt.Errorf("loading phrases: %w", err)
	}
	if len(phraseList) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No phrases found in %s column %q\n", input, column)
		return nil
	}

	cfg := clientConfig(cmd)
	if maxResults > 0 {
		cfg.MaxResults = maxResults
	}
	client := pubpeer.New(cfg, logger)

	logger.Info().
		Int("phrases", len(phraseList)).
		Str("output", output).
		Msg("starting discovery")

	tracker := progress.NewTracker("Discovering", int64(len(phraseList)), cmd.ErrOrStderr())
	result, runErr := pipeline.Discover(cmd.Context(), client, phraseList, pipeline.DiscoverConfig{
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
		Phase:      "discover",
		InputPath:  input,
		OutputPath: output,
		Phrases:    result.Phrases,
		NewItems:   result.New,
		Failures:   result.Failed,
		Timestamp:  time.Now().UTC(),
	}
	if err := pipeline.WriteManifest(pipeline.ManifestPath(output), manifest); err != nil {
		logger.Warn().Err(err).Msg("writing run manifest failed")
	}
	return nil
}
