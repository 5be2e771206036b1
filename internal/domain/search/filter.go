package search

// Condition is a single disjunctive attribute clause matching a payload field.
type Condition struct {
	key   string
	match string
}

// Key returns the payload field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact value to match.
func (c Condition) Match() string { return c.match }

// Filter is a disjunctive ("should") group of attribute conditions. A
// candidate boosts its fused rank by matching any condition; the filter is
// never exclusive on its own.
type Filter struct {
	should []Condition
}

// BoostFilter builds the should-group for the given attributes. Empty
// attributes contribute no condition; an all-empty input yields an empty
// filter, meaning the engine runs a single unfused query.
func BoostFilter(category, cuisine string, ingredients []string) Filter {
	var should []Condition
	if category != "" {
		should = append(should, Condition{key: "category", match: category})
	}
	if cuisine != "" {
		should = append(should, Condition{key: "cuisine", match: cuisine})
	}
	for _, ing := range ingredients {
		if ing != "" {
			should = append(should, Condition{key: "ingredients", match: ing})
		}
	}
	return Filter{should: should}
}

// Should returns the disjunctive conditions.
func (f Filter) Should() []Condition { return f.should }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool { return len(f.should) == 0 }
