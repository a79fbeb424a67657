package extract

import (
	"strings"

	"github.com/ppiankov/vigil/internal/dictionary"
	"github.com/ppiankov/vigil/internal/model"
)

// ContextWindow is the number of tokens kept on each side of a match
const ContextWindow = 5

// entry is a normalized dictionary entry
type entry struct {
	category  model.Category
	canonical string
	tokens    []string
}

// index holds one language's entries keyed by their first normalized token.
// Within a key, entries keep category order then dictionary order.
type index struct {
	language string
	byFirst  map[string][]entry
}

// Matcher finds exact word-level dictionary hits in text
type Matcher struct {
	set     *dictionary.Set
	indexes map[string]*index
}

// NewMatcher precomputes a normalized index for every language in the set.
// The matcher is read-only afterwards and safe for concurrent use.
func NewMatcher(set *dictionary.Set) *Matcher {
	m := &Matcher{
		set:     set,
		indexes: make(map[string]*index),
	}

	for _, lang := range set.Languages() {
		m.indexes[lang] = buildIndex(set.Lookup(lang))
	}

	return m
}

func buildIndex(d *dictionary.Dictionary) *index {
	idx := &index{
		language: d.Language(),
		byFirst:  make(map[string][]entry),
	}

	seen := make(map[string]bool)
	for _, c := range model.Categories {
		for _, word := range d.Entries(c) {
			tokens := Tokenize(word)
			for i := range tokens {
				tokens[i] = Normalize(tokens[i])
			}
			if len(tokens) == 0 {
				continue
			}

			key := string(c) + "\x00" + strings.Join(tokens, " ")
			if seen[key] {
				continue
			}
			seen[key] = true

			idx.byFirst[tokens[0]] = append(idx.byFirst[tokens[0]], entry{
				category:  c,
				canonical: word,
				tokens:    tokens,
			})
		}
	}

	return idx
}

// Set returns the dictionary set backing the matcher
func (m *Matcher) Set() *dictionary.Set {
	return m.set
}

// Match scans text against the dictionary for language (base-language
// dictionary when unknown). SegmentID and StartTime are left for the caller.
func (m *Matcher) Match(text, language string) []model.KeywordMatch {
	idx := m.indexes[m.set.Resolve(language)]

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	normalized := make([]string, len(tokens))
	for i, tok := range tokens {
		normalized[i] = Normalize(tok)
	}

	var matches []model.KeywordMatch
	for i := range tokens {
		for _, e := range idx.byFirst[normalized[i]] {
			end := i + len(e.tokens)
			if end > len(tokens) || !equalTokens(normalized[i:end], e.tokens) {
				continue
			}

			matches = append(matches, model.KeywordMatch{
				Word:     e.canonical,
				Category: e.category,
				Language: idx.language,
				Context:  contextWindow(tokens, i, end),
			})
		}
	}

	return matches
}

// contextWindow joins up to ContextWindow tokens before start and after end
func contextWindow(tokens []string, start, end int) string {
	from := start - ContextWindow
	if from < 0 {
		from = 0
	}
	to := end + ContextWindow
	if to > len(tokens) {
		to = len(tokens)
	}
	return strings.Join(tokens[from:to], " ")
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
