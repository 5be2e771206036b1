// Package scoring holds the pure boost/penalty model applied to raw vector
// similarity scores. No I/O, no state beyond the injected weights.
package scoring

import (
	"strings"

	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

// Weights are the tunable adjustment units. Small units preserve recall,
// large units maximize attribute precision.
type Weights struct {
	BoostUnit   float64
	PenaltyUnit float64
}

// DefaultWeights are the deployment defaults.
func DefaultWeights() Weights {
	return Weights{BoostUnit: 0.1, PenaltyUnit: 0.005}
}

// NormalizeIngredients splits a comma-separated ingredient string into a
// trimmed list with empties dropped.
func NormalizeIngredients(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeList trims each entry and drops empties.
func NormalizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// fold canonicalizes an ingredient for comparison.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func foldSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if f := fold(it); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

// Overlap counts the distinct query ingredients present in the payload list,
// case and whitespace insensitive.
func Overlap(query, payload []string) int {
	if len(query) == 0 || len(payload) == 0 {
		return 0
	}
	pset := foldSet(payload)
	n := 0
	for f := range foldSet(query) {
		if _, ok := pset[f]; ok {
			n++
		}
	}
	return n
}

// Missing counts the distinct query ingredients absent from the payload list.
func Missing(query, payload []string) int {
	pset := foldSet(payload)
	n := 0
	for f := range foldSet(query) {
		if _, ok := pset[f]; !ok {
			n++
		}
	}
	return n
}

// Boost multiplies score by (1 + boostSum): one BoostUnit per matched
// ingredient, one for an exact category match, one for an exact cuisine match.
func (w Weights) Boost(score float64, p search.Payload, ingredients []string, category, cuisine string) float64 {
	boost := 0.0
	if len(ingredients) > 0 {
		boost += w.BoostUnit * float64(Overlap(ingredients, p.Ingredients))
	}
	if category != "" && contains(p.Category, category) {
		boost += w.BoostUnit
	}
	if cuisine != "" && p.Cuisine == cuisine {
		boost += w.BoostUnit
	}
	return score * (1 + boost)
}

// Penalize multiplies score by (1 - penaltySum), floored at zero: one
// PenaltyUnit per query ingredient missing from the payload (only when both
// lists are non-empty), one for a present-but-different category, one for a
// present-but-different cuisine. Applied after Boost; order matters.
func (w Weights) Penalize(score float64, p search.Payload, ingredients []string, category, cuisine string) float64 {
	penalty := 0.0
	if len(ingredients) > 0 && len(p.Ingredients) > 0 {
		penalty += w.PenaltyUnit * float64(Missing(ingredients, p.Ingredients))
	}
	if category != "" && len(p.Category) > 0 && !contains(p.Category, category) {
		penalty += w.PenaltyUnit
	}
	if cuisine != "" && p.Cuisine != "" && p.Cuisine != cuisine {
		penalty += w.PenaltyUnit
	}
	return max(0, score*(1-penalty))
}

// Adjust applies boost then penalty.
func (w Weights) Adjust(score float64, p search.Payload, ingredients []string, category, cuisine string) float64 {
	return w.Penalize(w.Boost(score, p, ingredients, category, cuisine), p, ingredients, category, cuisine)
}

func contains(list []string, v string) bool {
	for _, it := range list {
		if it == v {
			return true
		}
	}
	return false
}
