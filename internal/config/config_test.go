package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1.5, cfg.BM25.K1)
	assert.Equal(t, 0.75, cfg.BM25.B)
	assert.Equal(t, 60, cfg.Fusion.RRFConstant)
	assert.Equal(t, 0.5, cfg.Fusion.BM25Weight)
	assert.Equal(t, 0.5, cfg.Fusion.VectorWeight)
	assert.True(t, cfg.Rerank.Enabled)
	assert.Equal(t, 10, cfg.Search.DefaultTopK)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().BM25.K1, cfg.BM25.K1)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
bm25:
  k1: 1.2
  b: 0.8
fusion:
  rrf_constant: 100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hybridsearch.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 1.2, cfg.BM25.K1)
	assert.Equal(t, 0.8, cfg.BM25.B)
	assert.Equal(t, 100, cfg.Fusion.RRFConstant)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlContent := "bm25:\n  k1: 1.2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hybridsearch.yaml"), []byte(yamlContent), 0o644))

	t.Setenv("HYBRIDSEARCH_BM25_K1", "2.0")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.BM25.K1)
}

func TestValidate_RejectsWeightsNotSummingToOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fusion.BM25Weight = 0.9
	cfg.Fusion.VectorWeight = 0.9

	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveK1(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BM25.K1 = 0

	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsOutOfRangeB(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BM25.B = 1.5

	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsOutOfRangeLambda(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Diverse.Lambda = 1.5

	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsZeroTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.Timeout = 0

	assert.Error(t, cfg.Validate())
}

func TestWriteYAML_WritesConfiguredValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := DefaultConfig()
	cfg.BM25.K1 = 1.3

	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	_ = loaded // Load looks for hybridsearch.yaml, not out.yaml; verify file content directly instead.

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "k1: 1.3")
}
