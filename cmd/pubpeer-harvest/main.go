// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubpeer-harvest CLI.
//
// The harvest runs in two phases, each a subcommand: discover searches
// the service for every input phrase and records candidate links; enrich
// fetches and parses the detail page behind every link. Both phases
// checkpoint to JSON files and resume from them, so either command can be
// interrupted and re-run.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is the process-wide logger, configured in PersistentPreRunE.
var logger = zerolog.Nop()

// rootCmd is the base command for the pubpeer-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "pubpeer-harvest",
	Short: "Harvest post-publication review records from PubPeer",
	Long: `pubpeer-harvest incrementally collects post-publication review records.

The discover subcommand searches the service for each phrase in a CSV
column and records the matching publication links. The enrich subcommand
then fetches the detail page behind every link, deduplicating records
across phrases. Both phases checkpoint their output periodically and
resume against it, so long runs survive interruption.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(parsed).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubpeer-harvest.yaml or ~/.config/pubpeer-harvest/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubpeer-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubpeer-harvest"))
		}
	}

	viper.SetEnvPrefix("PUBPEER_HARVEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// addClientFlags registers the HTTP client flags shared by both phases.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", "", "service base URL (default https://pubpeer.com)")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	cmd.Flags().Duration("delay", 0, "politeness delay between requests (default 1s)")
	cmd.Flags().Duration("retry-backoff", 0, "base backoff between retries (default 2s)")
	cmd.Flags().Int("max-retries", 0, "attempts per request before giving up (default 5)")
}

// clientConfig resolves the client settings: defaults, then the config
// file / environment, then explicit flags.
func clientConfig(cmd *cobra.Command) types.ClientConfig {
	cfg := types.DefaultClientConfig()

	if v := viper.GetString("client.base_url"); v != "" {
		cfg.BaseURL = v
	}
	if v := viper.GetString("client.user_agent"); v != "" {
		cfg.UserAgent = v
	}
	if v := viper.GetDuration("client.timeout"); v > 0 {
		cfg.Timeout = v
	}
	if v := viper.GetDuration("client.delay"); v > 0 {
		cfg.Delay = v
	}
	if v := viper.GetDuration("client.retry_backoff"); v > 0 {
		cfg.RetryBackoff = v
	}
	if v := viper.GetInt("client.max_retries"); v > 0 {
		cfg.MaxRetries = v
	}

	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		cfg.Timeout = v
	}
	if cmd.Flags().Changed("delay") {
		cfg.Delay, _ = cmd.Flags().GetDuration("delay")
	}
	if v, _ := cmd.Flags().GetDuration("retry-backoff"); v > 0 {
		cfg.RetryBackoff = v
	}
	if v, _ := cmd.Flags().GetInt("max-retries"); v > 0 {
		cfg.MaxRetries = v
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
