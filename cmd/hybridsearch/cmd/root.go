// Package cmd provides the CLI commands for hybridsearch.
package cmd

import (
	"github.com/spf13/cobra"
)

// dataPath is the persistent flag naming the corpus snapshot file that
// index and search operate against.
var dataPath string

// debugMode enables verbose structured logging to stderr.
var debugMode bool

// logLevel overrides the debug logger's minimum level (debug, info,
// warn, error); only consulted when debugMode is set.
var logLevel string

// NewRootCmd creates the root command for the hybridsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hybridsearch",
		Short: "Hybrid BM25 + semantic search over a document corpus",
		Long: `hybridsearch demonstrates the hybridcore search engine: lexical
(BM25) and semantic (embedding) retrieval fused with Reciprocal Rank
Fusion, with optional cross-encoder reranking and MMR diversification.

It runs entirely offline using a deterministic hash-based embedding
model, so results are reproducible without downloading a real model.`,
	}

	cmd.PersistentFlags().StringVar(&dataPath, "data", ".hybridsearch/corpus.gob", "path to the corpus snapshot file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable verbose structured logging")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "debug", "minimum level for --debug logging (debug, info, warn, error)")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
