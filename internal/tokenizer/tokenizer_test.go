package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_LowercasesAndSplits(t *testing.T) {
	tokens := Tokenize("Use JWT bearer token for authentication")
	assert.Equal(t, []string{"use", "jwt", "bearer", "token", "for", "authentication"}, tokens)
}

func TestTokenize_DropsShortTokens(t *testing.T) {
	tokens := Tokenize("a I of it JWT")
	assert.Equal(t, []string{"of", "it", "jwt"}, tokens)
}

func TestTokenize_SplitsOnPunctuation(t *testing.T) {
	tokens := Tokenize("GET /auth/login?redirect=true")
	assert.Equal(t, []string{"get", "auth", "login", "redirect", "true"}, tokens)
}

func TestTokenize_RetainsDuplicatesAndOrder(t *testing.T) {
	tokens := Tokenize("data data data")
	assert.Equal(t, []string{"data", "data", "data"}, tokens)
}

func TestTokenize_EmptyStringReturnsEmpty(t *testing.T) {
	tokens := Tokenize("")
	assert.Empty(t, tokens)
}

func TestTokenize_PassesThroughUnicode(t *testing.T) {
	tokens := Tokenize("café 日本語")
	assert.Equal(t, []string{"café", "日本語"}, tokens)
}

func TestTokenize_IdempotentUnderRejoinForASCII(t *testing.T) {
	s := "Use JWT bearer token for Authentication 123"
	first := Tokenize(s)
	second := Tokenize(strings.Join(first, " "))
	assert.Equal(t, first, second)
}

func TestTokenize_UnderscoreIsWordChar(t *testing.T) {
	tokens := Tokenize("user_id fieldName")
	assert.Equal(t, []string{"user_id", "fieldname"}, tokens)
}
