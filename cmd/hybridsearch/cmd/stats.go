package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print corpus and cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), cmd)
		},
	}
}

func runStats(ctx context.Context, cmd *cobra.Command) error {
	cleanup := setupLogging()
	defer cleanup()

	backend, err := openBackend()
	if err != nil {
		return err
	}
	orchestrator, err := newOrchestrator(backend)
	if err != nil {
		return err
	}

	stats, err := orchestrator.Stats(ctx)
	if err != nil {
		return fmt.Errorf("fetching stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "documents: %d\n", stats.DocumentCount)
	fmt.Fprintf(out, "features: %v\n", stats.Features)
	fmt.Fprintf(out, "bm25 rebuilds: %d\n", stats.BM25RebuildCount)
	for name, cs := range stats.CacheStats {
		fmt.Fprintf(out, "%s cache: hits=%d misses=%d evictions=%d len=%d\n", name, cs.Hits, cs.Misses, cs.Evictions, cs.Len)
	}
	return nil
}
