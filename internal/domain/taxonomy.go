package domain

// Closed category and cuisine sets. Duck-typed enum-or-string inputs do not
// exist past the boundary: handlers validate against these sets and the core
// always receives plain strings.

var categories = map[string]struct{}{
	"Bread":                {},
	"Breakfast & Brunch":   {},
	"Drinks":               {},
	"Main Course":          {},
	"Pantry & Ingredients": {},
	"Salad":                {},
	"Sandwich":             {},
	"Sauce":                {},
	"Side Dish":            {},
	"Soup":                 {},
	"Spice Mix":            {},
	"Starters & Snacks":    {},
	"Sweets & Desserts":    {},
}

var cuisines = map[string]struct{}{
	"North American":    {},
	"Asian":             {},
	"European":          {},
	"African":           {},
	"Fusion & Inspired": {},
	"Latin American":    {},
	"Mediterranean":     {},
	"Middle Eastern":    {},
	"World / Fusion":    {},
}

// ValidCategory reports whether c is in the closed category set.
func ValidCategory(c string) bool {
	_, ok := categories[c]
	return ok
}

// ValidCuisine reports whether c is in the closed cuisine set.
func ValidCuisine(c string) bool {
	_, ok := cuisines[c]
	return ok
}
