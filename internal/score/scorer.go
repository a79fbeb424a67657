package score

import (
	"fmt"

	"github.com/ppiankov/vigil/internal/model"
)

// Severity thresholds. Each band starts at its threshold; HIGH_RISK is open-ended.
const (
	SuspiciousThreshold = 3
	HighRiskThreshold   = 6
)

// Scorer calculates the threat score and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate computes the weighted threat score of a session aggregate.
// It is total: the empty aggregate scores 0 and classifies SAFE.
func (s *Scorer) Calculate(agg model.SessionAggregate) model.ThreatScore {
	var signals []model.Signal

	// 1. Base score: count * weight per category
	breakdown := model.Breakdown{Categories: model.NewCategoryCounts()}
	base := 0
	for _, c := range model.Categories {
		count := agg.CategoryCounts[c]
		term := count * c.Weight()
		breakdown.Categories[c] = term
		base += term

		if count > 0 {
			signals = append(signals, model.Signal{
				Type:        model.SignalCategoryWeight,
				Description: fmt.Sprintf("%s: %d x %d = %d", c.Label(), count, c.Weight(), term),
				Data: map[string]interface{}{
					"category": string(c),
					"count":    count,
					"weight":   c.Weight(),
					"score":    term,
					"formula":  "count * weight",
				},
			})
		}
	}

	// 2. Repetition bonus
	repetition, repetitionSignal := s.repetitionBonus(agg)
	if repetition > 0 {
		signals = append(signals, repetitionSignal)
	}

	// 3. Spread bonus
	spread, spreadSignal := s.spreadBonus(agg.ChunksInvolved)
	if spread > 0 {
		signals = append(signals, spreadSignal)
	}

	// 4. Combined bonus
	breakdown.Bonus = repetition + spread
	total := base + breakdown.Bonus

	// 5. Severity
	severity := Classify(total)
	signals = append(signals, model.Signal{
		Type:        model.SignalSeverityBand,
		Description: fmt.Sprintf("Score %d maps to %s", total, severity),
		Data: map[string]interface{}{
			"score":      total,
			"base":       base,
			"bonus":      breakdown.Bonus,
			"severity":   string(severity),
			"thresholds": fmt.Sprintf("SAFE 0-%d, SUSPICIOUS %d-%d, HIGH_RISK %d+", SuspiciousThreshold-1, SuspiciousThreshold, HighRiskThreshold-1, HighRiskThreshold),
		},
	})

	return model.ThreatScore{
		Score:     total,
		Severity:  severity,
		Breakdown: breakdown,
		Signals:   signals,
	}
}

// repetitionBonus rewards repeated words sub-linearly
func (s *Scorer) repetitionBonus(agg model.SessionAggregate) (int, model.Signal) {
	total := 0
	for _, c := range model.Categories {
		total += agg.CategoryCounts[c]
	}
	unique := len(agg.UniqueWords)

	if unique == 0 || total <= unique {
		return 0, model.Signal{}
	}

	bonus := (total - unique) / 2
	return bonus, model.Signal{
		Type:        model.SignalRepetitionBonus,
		Description: fmt.Sprintf("%d occurrences of %d distinct keywords", total, unique),
		Data: map[string]interface{}{
			"total":   total,
			"unique":  unique,
			"bonus":   bonus,
			"formula": "floor((total - unique) / 2)",
		},
	}
}

// spreadBonus rewards indicators recurring across more than two segments
func (s *Scorer) spreadBonus(chunksInvolved int) (int, model.Signal) {
	if chunksInvolved <= 2 {
		return 0, model.Signal{}
	}

	bonus := chunksInvolved / 2
	return bonus, model.Signal{
		Type:        model.SignalSpreadBonus,
		Description: fmt.Sprintf("Indicators found in %d segments", chunksInvolved),
		Data: map[string]interface{}{
			"chunks_involved": chunksInvolved,
			"bonus":           bonus,
			"formula":         "floor(chunks_involved / 2) when chunks_involved > 2",
		},
	}
}

// Classify maps a score to its severity band
func Classify(score int) model.Severity {
	switch {
	case score >= HighRiskThreshold:
		return model.SeverityHighRisk
	case score >= SuspiciousThreshold:
		return model.SeveritySuspicious
	default:
		return model.SeveritySafe
	}
}
