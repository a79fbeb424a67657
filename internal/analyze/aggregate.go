package analyze

import (
	"github.com/ppiankov/vigil/internal/extract"
	"github.com/ppiankov/vigil/internal/model"
)

// Aggregate folds chunk analyses into a session aggregate. Matches are
// concatenated in chunk order; matched words are lowercased into the unique
// set. Empty input yields an all-zero aggregate with every category present.
func Aggregate(chunks []model.ChunkAnalysis) model.SessionAggregate {
	agg := model.SessionAggregate{
		CategoryCounts: model.NewCategoryCounts(),
		UniqueWords:    make(map[string]struct{}),
		AllMatches:     []model.KeywordMatch{},
	}

	for _, chunk := range chunks {
		if chunk.HasThreats {
			agg.ChunksInvolved++
		}
		for _, m := range chunk.Matches {
			agg.CategoryCounts[m.Category]++
			agg.UniqueWords[extract.Normalize(m.Word)] = struct{}{}
			agg.TotalMatches++
		}
		agg.AllMatches = append(agg.AllMatches, chunk.Matches...)
	}

	return agg
}
