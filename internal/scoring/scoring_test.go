package scoring

import (
	"testing"

	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

func TestNormalizeIngredients(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "avocado", []string{"avocado"}},
		{"comma separated", "avocado, tomato, toast", []string{"avocado", "tomato", "toast"}},
		{"whitespace and empties", " avocado ,, , tomato ", []string{"avocado", "tomato"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIngredients(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOverlap_CaseAndWhitespaceInsensitive(t *testing.T) {
	query := []string{"Avocado", " tomato "}
	payload := []string{"avocado", "TOMATO", "toast"}
	if got := Overlap(query, payload); got != 2 {
		t.Errorf("Overlap = %d, want 2", got)
	}
}

func TestOverlap_EmptySides(t *testing.T) {
	if got := Overlap(nil, []string{"a"}); got != 0 {
		t.Errorf("Overlap(nil, payload) = %d", got)
	}
	if got := Overlap([]string{"a"}, nil); got != 0 {
		t.Errorf("Overlap(query, nil) = %d", got)
	}
}

func TestMissing(t *testing.T) {
	query := []string{"avocado", "tomato", "toast"}
	payload := []string{"avocado"}
	if got := Missing(query, payload); got != 2 {
		t.Errorf("Missing = %d, want 2", got)
	}
}

func TestBoost_IngredientCategoryCuisine(t *testing.T) {
	w := Weights{BoostUnit: 0.1, PenaltyUnit: 0.005}
	p := search.Payload{
		Category:    []string{"Breakfast & Brunch"},
		Cuisine:     "Mediterranean",
		Ingredients: []string{"avocado", "toast"},
	}

	// Two matched ingredients + category + cuisine = 4 units.
	got := w.Boost(0.5, p, []string{"avocado", "toast", "tomato"}, "Breakfast & Brunch", "Mediterranean")
	want := 0.5 * (1 + 0.4)
	if got != want {
		t.Errorf("Boost = %f, want %f", got, want)
	}
}

func TestBoost_NoAttributes(t *testing.T) {
	w := DefaultWeights()
	if got := w.Boost(0.7, search.Payload{}, nil, "", ""); got != 0.7 {
		t.Errorf("Boost without attributes = %f, want 0.7", got)
	}
}

func TestPenalize_MissingIngredientsAndMismatches(t *testing.T) {
	w := Weights{BoostUnit: 0.1, PenaltyUnit: 0.005}
	p := search.Payload{
		Category:    []string{"Soup"},
		Cuisine:     "Asian",
		Ingredients: []string{"toast"},
	}

	// Two missing ingredients + category mismatch + cuisine mismatch = 4 units.
	got := w.Penalize(1.0, p, []string{"avocado", "tomato", "toast"}, "Breakfast & Brunch", "Mediterranean")
	want := 1.0 * (1 - 0.02)
	if got != want {
		t.Errorf("Penalize = %f, want %f", got, want)
	}
}

func TestPenalize_NoPayloadIngredients_NoIngredientPenalty(t *testing.T) {
	w := DefaultWeights()
	// Ingredient-collection payloads omit the ingredient list; no penalty then.
	got := w.Penalize(0.8, search.Payload{}, []string{"avocado"}, "", "")
	if got != 0.8 {
		t.Errorf("Penalize = %f, want 0.8", got)
	}
}

func TestPenalize_AbsentPayloadAttribute_NoPenalty(t *testing.T) {
	w := DefaultWeights()
	// Category/cuisine penalties require the payload attribute to be present.
	got := w.Penalize(0.8, search.Payload{}, nil, "Soup", "Asian")
	if got != 0.8 {
		t.Errorf("Penalize = %f, want 0.8", got)
	}
}

func TestPenalize_FloorsAtZero(t *testing.T) {
	w := Weights{BoostUnit: 0.1, PenaltyUnit: 0.9}
	p := search.Payload{Ingredients: []string{"x"}}
	got := w.Penalize(0.5, p, []string{"a", "b"}, "", "")
	if got != 0 {
		t.Errorf("Penalize = %f, want 0", got)
	}
}

func TestAdjust_NeverExceedsBoostedAndNonNegative(t *testing.T) {
	w := DefaultWeights()
	p := search.Payload{
		Category:    []string{"Salad"},
		Cuisine:     "European",
		Ingredients: []string{"lettuce"},
	}
	scores := []float64{0, 0.1, 0.5, 0.99, 1}
	for _, s := range scores {
		boosted := w.Boost(s, p, []string{"lettuce", "olives"}, "Soup", "Asian")
		adjusted := w.Adjust(s, p, []string{"lettuce", "olives"}, "Soup", "Asian")
		if adjusted < 0 {
			t.Errorf("adjusted(%f) = %f, negative", s, adjusted)
		}
		if adjusted > boosted {
			t.Errorf("adjusted(%f) = %f exceeds boosted %f", s, adjusted, boosted)
		}
	}
}

func TestAdjust_MoreOverlapScoresHigher(t *testing.T) {
	w := DefaultWeights()
	query := []string{"avocado", "tomato", "toast"}
	two := search.Payload{Ingredients: []string{"avocado", "toast"}}
	one := search.Payload{Ingredients: []string{"toast"}}

	a := w.Adjust(0.5, two, query, "", "")
	b := w.Adjust(0.5, one, query, "", "")
	if a <= b {
		t.Errorf("two-overlap score %f not above one-overlap score %f", a, b)
	}
}
