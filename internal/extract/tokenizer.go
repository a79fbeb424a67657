package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// punctuation is removed from text before splitting. Covers ASCII, typographic
// quotes, Devanagari danda and Arabic-script marks.
const punctuation = ".,!?;:\"'`()[]{}<>\\|#$%^&*_~=+@-“”‘’«»।॥،۔؟؛"

// separators behave like whitespace so they never glue two words together.
const separators = "—–…/"

// Tokenize strips punctuation and splits text on runs of whitespace.
// Empty input yields an empty slice.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(separators, r):
			return ' '
		case strings.ContainsRune(punctuation, r):
			return -1
		}
		return r
	}, text)

	tokens := strings.Fields(cleaned)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// Normalize prepares a token or dictionary entry for comparison: trim,
// canonical Unicode composition, lowercase. Scripts without case pass
// through unchanged.
func Normalize(token string) string {
	token = norm.NFC.String(strings.TrimSpace(token))
	// Casers hold state and must not be shared across goroutines.
	return cases.Lower(language.Und).String(token)
}
