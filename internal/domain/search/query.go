package search

import "fmt"

// DefaultK is the result-count bound used when the caller does not set one.
const DefaultK = 5

// Query is a validated retrieval request: free text plus optional structured
// attributes. Category and cuisine arrive already validated against the
// closed taxonomies.
type Query struct {
	text        string
	k           int
	category    string
	cuisine     string
	ingredients []string
}

// NewQuery validates and creates a Query. k <= 0 falls back to DefaultK.
func NewQuery(text string, k int, category, cuisine string, ingredients []string) (Query, error) {
	if text == "" {
		return Query{}, fmt.Errorf("query text is required")
	}
	if k <= 0 {
		k = DefaultK
	}
	return Query{
		text:        text,
		k:           k,
		category:    category,
		cuisine:     cuisine,
		ingredients: ingredients,
	}, nil
}

// Text returns the free-text query.
func (q Query) Text() string { return q.text }

// K returns the result-count bound. Invariant: K > 0.
func (q Query) K() int { return q.k }

// Category returns the optional category attribute ("" when absent).
func (q Query) Category() string { return q.category }

// Cuisine returns the optional cuisine attribute ("" when absent).
func (q Query) Cuisine() string { return q.cuisine }

// Ingredients returns the optional named-ingredient list.
func (q Query) Ingredients() []string { return q.ingredients }
