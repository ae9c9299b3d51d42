package errors

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser_BasicError(t *testing.T) {
	err := New(ErrCodeBackendUnavailable, "vector backend not reachable", nil)

	result := FormatForUser(err, false)

	assert.Contains(t, result, "vector backend not reachable")
	assert.NotContains(t, result, "ERR_301_BACKEND_UNAVAILABLE")
}

func TestFormatForUser_DebugIncludesCode(t *testing.T) {
	err := New(ErrCodeBackendUnavailable, "vector backend not reachable", nil)

	result := FormatForUser(err, true)

	assert.Contains(t, result, "[ERR_301_BACKEND_UNAVAILABLE]")
}

func TestFormatForUser_StandardError(t *testing.T) {
	err := errors.New("something went wrong")

	result := FormatForUser(err, false)

	assert.Contains(t, result, "something went wrong")
}

func TestFormatForUser_NilError(t *testing.T) {
	result := FormatForUser(nil, false)

	assert.Empty(t, result)
}

func TestFormatJSON_BasicError(t *testing.T) {
	err := New(ErrCodeFilterMalformed, "unsupported filter op", nil).
		WithDetail("field", "price")

	data, jsonErr := FormatJSON(err)
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, ErrCodeFilterMalformed, result["code"])
	assert.Equal(t, "unsupported filter op", result["message"])
	assert.Equal(t, string(KindFilter), result["kind"])
	assert.Equal(t, string(SeverityError), result["severity"])

	details, ok := result["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "price", details["field"])
}

func TestFormatJSON_StandardError(t *testing.T) {
	err := errors.New("generic error")

	data, jsonErr := FormatJSON(err)
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, ErrCodeModelBadResponse, result["code"])
	assert.Equal(t, "generic error", result["message"])
}

func TestFormatJSON_NilError(t *testing.T) {
	data, err := FormatJSON(nil)

	assert.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(string(data)))
}

func TestFormatJSON_WithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(ErrCodeModelCallFailed, "reranker call failed", cause)

	data, jsonErr := FormatJSON(err)
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "underlying error", result["cause"])
}

func TestFormatForCLI_IncludesCodeAndKind(t *testing.T) {
	err := New(ErrCodeIndexDisagreement, "bm25 and vector counts diverge", nil)

	result := FormatForCLI(err)

	assert.Contains(t, result, "bm25 and vector counts diverge")
	assert.Contains(t, result, "ERR_601_INDEX_DISAGREEMENT")
	assert.Contains(t, result, "CONSISTENCY")
}

func TestFormatForCLI_ShortFormat(t *testing.T) {
	err := New(ErrCodeBackendUnavailable, "backend down", nil)

	result := FormatForCLI(err)

	lines := strings.Split(strings.TrimSpace(result), "\n")
	assert.LessOrEqual(t, len(lines), 5, "should be concise")
}
