// Package tokenizer normalizes document and query text into an ordered
// token stream shared by the BM25 index and the query pipeline.
package tokenizer

import (
	"strings"
	"unicode"
)

// minTokenLength is the shortest token kept after splitting; shorter
// fragments carry no discriminating signal for BM25 scoring.
const minTokenLength = 2

// Tokenize lowercases text and splits it on runs of non-word characters,
// where a word character is a Unicode letter, digit, or underscore.
// Tokens shorter than two runes are dropped. Order is preserved and
// duplicate tokens are retained. No stemming or stop-word removal is
// performed, and the same function is used for documents and queries.
func Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/4)

	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		tok := current.String()
		if len([]rune(tok)) >= minTokenLength {
			tokens = append(tokens, tok)
		}
		current.Reset()
	}

	for _, r := range text {
		if isWordRune(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
