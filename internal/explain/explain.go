// Package explain renders the rationale behind a threat score. It reads the
// score, severity and breakdown as evidence and never changes them.
package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/vigil/internal/extract"
	"github.com/ppiankov/vigil/internal/model"
)

const (
	// MaxWordsPerCategory bounds the words listed on a category detail line
	MaxWordsPerCategory = 5
	// MaxExamples bounds the context excerpts included
	MaxExamples = 3
)

// SafeSummary is used for every session classified SAFE
const SafeSummary = "No significant threat indicators were detected in this session."

// Generator builds explanations
type Generator struct{}

// NewGenerator creates a new explanation generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Explain derives summary, category detail lines, triggered keywords and
// context examples from the matches and score evidence.
func (g *Generator) Explain(severity model.Severity, score int, matches []model.KeywordMatch, breakdown model.Breakdown, chunksInvolved int) model.Explanation {
	return model.Explanation{
		Summary:           summary(severity, score, len(matches), chunksInvolved),
		Details:           details(matches, breakdown),
		Examples:          examples(matches),
		TriggeredKeywords: TriggeredKeywords(matches),
	}
}

func summary(severity model.Severity, score, matchCount, chunksInvolved int) string {
	if severity == model.SeveritySafe {
		return SafeSummary
	}
	return fmt.Sprintf("Session classified as %s (%s) with a threat score of %d: %d %s across %d %s.",
		severity.Label(), severity, score,
		matchCount, plural(matchCount, "keyword match", "keyword matches"),
		chunksInvolved, plural(chunksInvolved, "segment", "segments"))
}

// TriggeredKeywords groups matches by lowercased word. Each group keeps the
// category and language of its first occurrence. Groups are ordered by count
// descending; ties keep first-seen order.
func TriggeredKeywords(matches []model.KeywordMatch) []model.TriggeredKeyword {
	var keywords []model.TriggeredKeyword
	position := make(map[string]int)

	for _, m := range matches {
		key := extract.Normalize(m.Word)
		if i, ok := position[key]; ok {
			keywords[i].Count++
			continue
		}
		position[key] = len(keywords)
		keywords = append(keywords, model.TriggeredKeyword{
			Word:     key,
			Category: m.Category,
			Language: m.Language,
			Count:    1,
		})
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].Count > keywords[j].Count
	})

	if keywords == nil {
		return []model.TriggeredKeyword{}
	}
	return keywords
}

// details lists, for each category with matches, its contribution and up to
// MaxWordsPerCategory distinct words
func details(matches []model.KeywordMatch, breakdown model.Breakdown) []string {
	counts := make(map[model.Category]int)
	words := make(map[model.Category][]string)
	seen := make(map[model.Category]map[string]bool)

	for _, m := range matches {
		counts[m.Category]++
		key := extract.Normalize(m.Word)
		if seen[m.Category] == nil {
			seen[m.Category] = make(map[string]bool)
		}
		if !seen[m.Category][key] {
			seen[m.Category][key] = true
			words[m.Category] = append(words[m.Category], key)
		}
	}

	lines := []string{}
	for _, c := range model.Categories {
		if counts[c] == 0 {
			continue
		}

		list := words[c]
		listed := list
		if len(listed) > MaxWordsPerCategory {
			listed = listed[:MaxWordsPerCategory]
		}
		text := strings.Join(listed, ", ")
		if more := len(list) - len(listed); more > 0 {
			text += fmt.Sprintf(" and %d more", more)
		}

		lines = append(lines, fmt.Sprintf("%s: %d %s, +%d points (%s)",
			c.Label(), counts[c], plural(counts[c], "match", "matches"), breakdown.Categories[c], text))
	}

	if breakdown.Bonus > 0 {
		lines = append(lines, fmt.Sprintf("Repetition and spread bonus: +%d points", breakdown.Bonus))
	}

	return lines
}

// examples returns up to MaxExamples distinct context windows, first-seen order
func examples(matches []model.KeywordMatch) []string {
	out := []string{}
	seen := make(map[string]bool)

	for _, m := range matches {
		if len(out) >= MaxExamples {
			break
		}
		if m.Context == "" {
			continue
		}
		key := extract.Normalize(m.Context)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m.Context)
	}

	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
