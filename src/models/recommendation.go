package models

// Category groups recommendations in the report.
type Category string

const (
	CategorySleep    Category = "sleep"
	CategoryActivity Category = "activity"
	CategoryRecovery Category = "recovery"
	CategoryGeneral  Category = "general"
)

// Categories is the fixed render order.
var Categories = []Category{
	CategorySleep,
	CategoryActivity,
	CategoryRecovery,
	CategoryGeneral,
}

// MRecommendationSet is the output of the rule engine. Order inside every
// slice is rule evaluation order; duplicates are kept.
type MRecommendationSet struct {
	Recommendations map[Category][]string `json:"recommendations"`
	Alerts          []string              `json:"alerts"`
	Insights        []string              `json:"insights"`
}

// NewRecommendationSet returns a set with every category present and empty.
func NewRecommendationSet() *MRecommendationSet {
	recs := make(map[Category][]string, len(Categories))
	for _, c := range Categories {
		recs[c] = []string{}
	}
	return &MRecommendationSet{
		Recommendations: recs,
		Alerts:          []string{},
		Insights:        []string{},
	}
}

// HasRecommendations reports whether any category is non-empty.
func (s *MRecommendationSet) HasRecommendations() bool {
	if s == nil {
		return false
	}
	for _, recs := range s.Recommendations {
		if len(recs) > 0 {
			return true
		}
	}
	return false
}
