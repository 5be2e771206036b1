package search

// Payload is the metadata stored alongside each vector point. Ingredients is
// populated only in the name collection; the ingredient collection's vector
// already encodes the ingredient list.
type Payload struct {
	ID             int64
	Category       []string
	Cuisine        string
	CookingMethods []string
	Ingredients    []string
}

// Hit is a single candidate returned by the vector index. Score is a
// similarity in [0,1] for plain queries and a reciprocal-rank sum for fused
// queries.
type Hit struct {
	ID      int64
	Score   float64
	Payload Payload
}
