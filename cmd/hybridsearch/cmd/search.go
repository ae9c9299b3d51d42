package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/opendocs-search/hybridcore/internal/expand"
	"github.com/opendocs-search/hybridcore/internal/filter"
	"github.com/opendocs-search/hybridcore/pkg/hybridcore"
)

type searchFlags struct {
	limit       int
	mode        string
	expandQuery bool
	diversify   bool
	lambda      float64
	explain     bool
	filterField string
	filterValue string
}

func newSearchCmd() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed corpus",
		Long: `Searches the corpus using hybrid retrieval: BM25 and semantic
candidates fused with Reciprocal Rank Fusion, with optional query
expansion, cross-encoder reranking, and MMR diversification.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "hybrid", "retrieval mode: vector, hybrid, reranked")
	cmd.Flags().BoolVar(&flags.expandQuery, "expand", false, "expand the query before BM25 matching")
	cmd.Flags().BoolVar(&flags.diversify, "diversify", false, "apply MMR diversification to results")
	cmd.Flags().Float64Var(&flags.lambda, "lambda", 0.5, "MMR relevance/diversity tradeoff (1.0 = pure relevance)")
	cmd.Flags().BoolVar(&flags.explain, "explain", false, "print the search decision trace")
	cmd.Flags().StringVar(&flags.filterField, "filter-field", "", "metadata field to filter on (requires --filter-value)")
	cmd.Flags().StringVar(&flags.filterValue, "filter-value", "", "metadata value to require for --filter-field")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, flags searchFlags) error {
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

	opts := hybridcore.SearchOptions{
		Mode:                  hybridcore.Mode(flags.mode),
		UseQueryExpansion:     flags.expandQuery,
		ExpansionStrategy:     expand.StrategyAuto,
		UseDiversification:    flags.diversify,
		DiversificationLambda: flags.lambda,
		Explain:               flags.explain,
	}
	if flags.filterField != "" {
		opts.Filter = filter.Leaf{Field: flags.filterField, Op: filter.OpEq, Value: flags.filterValue}
	}

	resp, err := orchestrator.Search(ctx, query, flags.limit, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	colorize := isatty.IsTerminal(os.Stdout.Fd())

	if resp.Degraded {
		fmt.Fprintln(out, "note: reranking unavailable, showing fused results")
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "no results")
		return nil
	}

	for i, r := range resp.Results {
		if colorize {
			fmt.Fprintf(out, "%2d. \033[1m%s\033[0m  score=\033[32m%.4f\033[0m  via=%s\n", i+1, r.DocID, r.Score, r.SourceMethod)
		} else {
			fmt.Fprintf(out, "%2d. %s  score=%.4f  via=%s\n", i+1, r.DocID, r.Score, r.SourceMethod)
		}
		fmt.Fprintf(out, "    %s\n", truncate(r.Content, 160))
	}

	if flags.explain && resp.Explain != nil {
		fmt.Fprintln(out, "---")
		fmt.Fprintf(out, "bm25 candidates: %d, vector candidates: %d\n", resp.Explain.BM25CandidateCount, resp.Explain.VectorCandidateCount)
		if resp.Explain.ExpandedQuery != nil {
			fmt.Fprintf(out, "expanded terms: %s\n", strings.Join(resp.Explain.ExpandedQuery.Terms, ", "))
		}
		fmt.Fprintf(out, "reranked: %v, diversified: %v\n", resp.Explain.RerankApplied, resp.Explain.DiversifyApplied)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
