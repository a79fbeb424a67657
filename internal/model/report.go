package model

import "time"

// KeywordMatch is a single dictionary hit inside a transcript segment.
type KeywordMatch struct {
	SegmentID string   `json:"segment_id"`
	Word      string   `json:"word"` // Canonical dictionary spelling, not the input token
	Category  Category `json:"category"`
	Language  string   `json:"language"` // Source language, or LanguageTranslated
	StartTime float64  `json:"start_time"`
	Context   string   `json:"context"` // Surrounding tokens joined by single spaces
}

// ChunkAnalysis is the per-segment result of keyword matching.
type ChunkAnalysis struct {
	SegmentID  string         `json:"segment_id"`
	Matches    []KeywordMatch `json:"matches"`
	Score      int            `json:"score"`
	HasThreats bool           `json:"has_threats"`
}

// SessionAggregate folds every ChunkAnalysis of a session.
type SessionAggregate struct {
	TotalMatches   int                 `json:"total_matches"`
	CategoryCounts map[Category]int    `json:"category_counts"`
	UniqueWords    map[string]struct{} `json:"-"`
	ChunksInvolved int                 `json:"chunks_involved"`
	AllMatches     []KeywordMatch      `json:"all_matches"`
}

// Severity is the three-band classification derived purely from score.
type Severity string

const (
	SeveritySafe       Severity = "SAFE"
	SeveritySuspicious Severity = "SUSPICIOUS"
	SeverityHighRisk   Severity = "HIGH_RISK"
)

// Label returns the human-readable form used in explanations.
func (s Severity) Label() string {
	switch s {
	case SeveritySafe:
		return "Safe"
	case SeveritySuspicious:
		return "Suspicious"
	case SeverityHighRisk:
		return "High risk"
	default:
		return string(s)
	}
}

// Breakdown records every term that contributes to a score.
type Breakdown struct {
	Categories map[Category]int `json:"categories"` // weight * count per category
	Bonus      int              `json:"bonus"`      // repetition + spread
}

// Total returns the sum of all breakdown terms.
func (b Breakdown) Total() int {
	total := b.Bonus
	for _, c := range Categories {
		total += b.Categories[c]
	}
	return total
}

// ThreatScore is the scorer's output
type ThreatScore struct {
	Score     int       `json:"score"`
	Severity  Severity  `json:"severity"`
	Breakdown Breakdown `json:"breakdown"`
	Signals   []Signal  `json:"signals"` // Transparent scoring data, never feeds back into Score
}

// Signal represents one transparent step of the scoring computation
type Signal struct {
	Type        SignalType             `json:"type"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Inputs and formula
}

// SignalType classifies a scoring signal
type SignalType string

const (
	SignalCategoryWeight  SignalType = "category_weight"  // count * weight per category
	SignalRepetitionBonus SignalType = "repetition_bonus" // repeated occurrences of the same word
	SignalSpreadBonus     SignalType = "spread_bonus"     // indicators across many segments
	SignalSeverityBand    SignalType = "severity_band"    // threshold mapping
)

// TriggeredKeyword summarises all occurrences of one word in a session.
type TriggeredKeyword struct {
	Word     string   `json:"word"`
	Category Category `json:"category"`
	Language string   `json:"language"`
	Count    int      `json:"count"`
}

// Explanation is the human-readable rationale for a score.
type Explanation struct {
	Summary           string             `json:"summary"`
	Details           []string           `json:"details"`
	Examples          []string           `json:"examples"`
	TriggeredKeywords []TriggeredKeyword `json:"triggered_keywords"`
}

// Text renders the explanation as a single block of plain text.
func (e Explanation) Text() string {
	text := e.Summary
	for _, d := range e.Details {
		text += "\n- " + d
	}
	for _, ex := range e.Examples {
		text += "\n> " + ex
	}
	return text
}

// ThreatAnalysisRecord is the final output of one pipeline run. It is handed
// to the storage collaborator keyed by session; the most recent record wins.
type ThreatAnalysisRecord struct {
	ID                string             `json:"id"`
	SessionID         string             `json:"session_id"`
	Score             int                `json:"score"`
	Severity          Severity           `json:"severity"`
	TriggeredKeywords []TriggeredKeyword `json:"triggered_keywords"`
	Breakdown         Breakdown          `json:"breakdown"`
	Explanation       string             `json:"explanation"`
	Summary           string             `json:"summary"`
	Details           []string           `json:"details,omitempty"`
	Examples          []string           `json:"examples,omitempty"`
	ChunksInvolved    int                `json:"chunks_involved"`
	SegmentsAnalyzed  int                `json:"segments_analyzed"`
	Signals           []Signal           `json:"signals,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}
