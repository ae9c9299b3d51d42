package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opendocs-search/hybridcore/internal/config"
	"github.com/opendocs-search/hybridcore/internal/logging"
	"github.com/opendocs-search/hybridcore/internal/vectorstore"
	"github.com/opendocs-search/hybridcore/pkg/hybridcore"
)

// embeddingDimensions is the width of the deterministic hash embedder
// this CLI demo always uses; a real deployment would supply its own
// hybridcore.EmbeddingModel wired to an actual model runtime.
const embeddingDimensions = 64

func setupLogging() func() {
	if !debugMode {
		return func() {}
	}
	cfg := logging.DebugConfig()
	// Validate the requested level before handing it to Setup: an
	// unrecognized --log-level would otherwise silently fall back to
	// info inside parseLevel with no indication why --debug looks quiet.
	if _, ok := logging.LevelFromString(logLevel); ok {
		cfg.Level = logLevel
	} else {
		slog.Warn("unrecognized --log-level, using debug", "value", logLevel)
	}

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		slog.Warn("failed to set up debug logging", "error", err)
		return func() {}
	}
	slog.SetDefault(logger)
	return cleanup
}

// openBackend loads an existing corpus snapshot, or returns a fresh
// empty backend if none exists yet.
func openBackend() (*vectorstore.HNSWBackend, error) {
	f, err := os.Open(dataPath)
	if os.IsNotExist(err) {
		return vectorstore.NewHNSWBackend(vectorstore.Config{Dimensions: embeddingDimensions}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening corpus snapshot: %w", err)
	}
	defer f.Close()

	backend, err := vectorstore.LoadHNSWBackend(f)
	if err != nil {
		return nil, fmt.Errorf("loading corpus snapshot: %w", err)
	}
	return backend, nil
}

// saveBackend persists the backend's corpus snapshot, creating the
// parent directory if needed.
func saveBackend(backend *vectorstore.HNSWBackend) error {
	if dir := filepath.Dir(dataPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	f, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating corpus snapshot: %w", err)
	}
	defer f.Close()
	return backend.SaveTo(f)
}

// newOrchestrator wires a backend into a SearchOrchestrator using the
// CLI's offline hash embedder and cross-encoder, tuned by whatever
// hybridsearch.yaml(.yml) the current directory provides (or spec
// defaults when it provides none).
func newOrchestrator(backend *vectorstore.HNSWBackend) (*hybridcore.SearchOrchestrator, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	embedder := hybridcore.NewHashEmbeddingModel(embeddingDimensions)
	reranker := hybridcore.WithReranker(hybridcore.HashCrossEncoderModel{}, hybridcore.RerankerOptionsFromConfig(cfg)...)
	return hybridcore.NewFromConfig(backend, embedder, cfg, reranker)
}
