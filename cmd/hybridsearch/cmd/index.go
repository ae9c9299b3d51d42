package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opendocs-search/hybridcore/pkg/hybridcore"
)

// indexLine is one JSONL record accepted by the index command.
type indexLine struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <file.jsonl>",
		Short: "Add documents from a JSONL file to the corpus",
		Long: `Reads newline-delimited JSON records ({"content": "...", "metadata": {...}})
and adds each as a document. Documents with identical content and
metadata to an already-indexed one are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd, args[0])
		},
	}
	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, path string) error {
	cleanup := setupLogging()
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	var docs []hybridcore.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec indexLine
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}
		docs = append(docs, hybridcore.Document{ID: rec.ID, Content: rec.Content, Metadata: rec.Metadata})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	backend, err := openBackend()
	if err != nil {
		return err
	}
	orchestrator, err := newOrchestrator(backend)
	if err != nil {
		return err
	}

	result, err := orchestrator.AddDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("indexing documents: %w", err)
	}
	if err := saveBackend(backend); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "indexed %d new document(s), skipped %d duplicate(s)\n", result.New, result.Skipped)
	return nil
}
