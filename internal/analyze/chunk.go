// Package analyze turns transcript segments into per-chunk match sets and
// folds them into a session aggregate.
package analyze

import (
	"github.com/ppiankov/vigil/internal/extract"
	"github.com/ppiankov/vigil/internal/model"
)

// ChunkAnalyzer applies the keyword matcher to one transcript segment
type ChunkAnalyzer struct {
	matcher *extract.Matcher
}

// NewChunkAnalyzer creates a chunk analyzer. The base language used for
// translated text is taken from the matcher's dictionary set.
func NewChunkAnalyzer(matcher *extract.Matcher) *ChunkAnalyzer {
	return &ChunkAnalyzer{matcher: matcher}
}

// Analyze matches the segment text in its own language and, when a
// translation is supplied for a non-base-language segment, the translation
// in the base language. Translation matches are tagged
// model.LanguageTranslated but count toward the same categories.
func (a *ChunkAnalyzer) Analyze(segment model.TranscriptSegment, translatedText string) model.ChunkAnalysis {
	matches := a.matcher.Match(segment.Text, segment.Language)

	set := a.matcher.Set()
	if translatedText != "" && !set.IsBase(segment.Language) {
		for _, m := range a.matcher.Match(translatedText, set.BaseLanguage()) {
			m.Language = model.LanguageTranslated
			matches = append(matches, m)
		}
	}

	score := 0
	for i := range matches {
		matches[i].SegmentID = segment.ID
		matches[i].StartTime = segment.StartTime
		score += matches[i].Category.Weight()
	}

	return model.ChunkAnalysis{
		SegmentID:  segment.ID,
		Matches:    matches,
		Score:      score,
		HasThreats: len(matches) > 0,
	}
}

// AnalyzeAll runs Analyze over segments in order
func (a *ChunkAnalyzer) AnalyzeAll(segments []model.TranscriptSegment, translations model.TranslationLookup) []model.ChunkAnalysis {
	chunks := make([]model.ChunkAnalysis, 0, len(segments))
	for _, seg := range segments {
		chunks = append(chunks, a.Analyze(seg, translations[seg.ID]))
	}
	return chunks
}
