package hybridcore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"unicode/utf8"

	searcherrors "github.com/opendocs-search/hybridcore/internal/errors"
)

// generateID derives a stable id from (content, metadata): two inserts
// with identical content and metadata and no supplied id collide on
// the same id, so the second is skipped rather than duplicated.
// json.Marshal on a map[string]any sorts keys, so metadata field
// order never affects the hash.
func generateID(content string, metadata map[string]any) (string, error) {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return "", searcherrors.EncodingError("document metadata is not serializable", err)
	}
	h := sha256.New()
	h.Write([]byte(content))
	h.Write([]byte{0})
	h.Write(meta)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// validateDocument rejects malformed UTF-8 content and metadata
// values that are not scalars or lists of scalars.
func validateDocument(content string, metadata map[string]any) error {
	if !utf8.ValidString(content) {
		return searcherrors.EncodingError("document content is not valid UTF-8", nil)
	}
	for field, v := range metadata {
		if err := validateMetadataValue(v); err != nil {
			return searcherrors.EncodingError("metadata field "+field+" has an unsupported value", err)
		}
	}
	return nil
}

func validateMetadataValue(v any) error {
	switch t := v.(type) {
	case nil, string, bool, int, int64, float64, float32:
		return nil
	case []any:
		for _, e := range t {
			switch e.(type) {
			case string, bool, int, int64, float64, float32:
			default:
				return searcherrors.EncodingError("list-valued metadata must contain only scalars", nil)
			}
		}
		return nil
	case []string, []int, []float64:
		return nil
	default:
		return searcherrors.EncodingError("metadata values must be scalars or lists of scalars", nil)
	}
}
