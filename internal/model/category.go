package model

// Category is a threat-indicator class. The set is closed.
type Category string

const (
	CategoryViolentActions Category = "violent_actions"
	CategoryWeapons        Category = "weapons"
	CategoryEvents         Category = "events"
	CategoryTargets        Category = "targets"
	CategoryUrgency        Category = "urgency"
)

// Categories is the canonical iteration order used by every stage of the
// pipeline. Matching, aggregation, scoring and explanation all range over
// this slice so no category can be silently dropped.
var Categories = []Category{
	CategoryViolentActions,
	CategoryWeapons,
	CategoryEvents,
	CategoryTargets,
	CategoryUrgency,
}

// categoryWeights are the fixed per-match weights.
var categoryWeights = map[Category]int{
	CategoryWeapons:        3,
	CategoryViolentActions: 2,
	CategoryEvents:         2,
	CategoryTargets:        2,
	CategoryUrgency:        1,
}

// Weight returns the scoring weight of a single match in this category.
func (c Category) Weight() int {
	return categoryWeights[c]
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := categoryWeights[c]
	return ok
}

// Label returns a human-readable name, e.g. "Violent actions".
func (c Category) Label() string {
	switch c {
	case CategoryViolentActions:
		return "Violent actions"
	case CategoryWeapons:
		return "Weapons"
	case CategoryEvents:
		return "Events"
	case CategoryTargets:
		return "Targets"
	case CategoryUrgency:
		return "Urgency"
	default:
		return string(c)
	}
}

// NewCategoryCounts returns a count map with every category present and zero.
func NewCategoryCounts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	return counts
}
