package domain

import (
	"fmt"
	"time"
)

// Recipe is the authoritative recipe row. Owned by the relational store; the
// retrieval engine only reads it.
type Recipe struct {
	ID              int64
	Name            string
	PreparationTime int
	CookingTime     int
	Category        []string
	Ingredients     []string
	IngredientsRaw  []string
	Instructions    string
	CookingMethods  []string
	Implements      []string
	Nutrition       map[string]any
	Cuisine         string
	NumberOfSteps   int
	URL             string
	CreatedAt       time.Time
	RatingValue     float64
	RatingCount     int
}

// RecipeInput is the normalized maintenance input. The transport boundary
// builds it from the request body; the core never branches on input shape.
type RecipeInput struct {
	Name            string
	PreparationTime int
	CookingTime     int
	Category        []string
	Ingredients     []string
	IngredientsRaw  []string
	Instructions    string
	CookingMethods  []string
	Implements      []string
	Nutrition       map[string]any
	Cuisine         string
	NumberOfSteps   int
	URL             string
}

// Validate checks required fields and the closed taxonomies.
func (in *RecipeInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(in.Category) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidInput)
	}
	if len(in.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrInvalidInput)
	}
	for _, c := range in.Category {
		if !ValidCategory(c) {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
	}
	if in.Cuisine == "" {
		return fmt.Errorf("%w: cuisine is required", ErrInvalidInput)
	}
	if !ValidCuisine(in.Cuisine) {
		return fmt.Errorf("%w: %q", ErrUnknownCuisine, in.Cuisine)
	}
	return nil
}

// RecipePatch carries a partial update. Nil fields keep the stored value.
type RecipePatch struct {
	Name            *string
	PreparationTime *int
	CookingTime     *int
	Category        []string
	Ingredients     []string
	IngredientsRaw  []string
	Instructions    *string
	CookingMethods  []string
	Implements      []string
	Nutrition       map[string]any
	Cuisine         *string
	NumberOfSteps   *int
	URL             *string
}

// Validate checks the taxonomies of the fields the patch actually sets.
func (p *RecipePatch) Validate() error {
	for _, c := range p.Category {
		if !ValidCategory(c) {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
	}
	if p.Cuisine != nil && !ValidCuisine(*p.Cuisine) {
		return fmt.Errorf("%w: %q", ErrUnknownCuisine, *p.Cuisine)
	}
	return nil
}

// Apply merges the patch into a copy of the stored recipe and returns the
// merged maintenance input used to rewrite the row and both index points.
func (p *RecipePatch) Apply(r Recipe) RecipeInput {
	in := RecipeInput{
		Name:            r.Name,
		PreparationTime: r.PreparationTime,
		CookingTime:     r.CookingTime,
		Category:        r.Category,
		Ingredients:     r.Ingredients,
		IngredientsRaw:  r.IngredientsRaw,
		Instructions:    r.Instructions,
		CookingMethods:  r.CookingMethods,
		Implements:      r.Implements,
		Nutrition:       r.Nutrition,
		Cuisine:         r.Cuisine,
		NumberOfSteps:   r.NumberOfSteps,
		URL:             r.URL,
	}
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.PreparationTime != nil {
		in.PreparationTime = *p.PreparationTime
	}
	if p.CookingTime != nil {
		in.CookingTime = *p.CookingTime
	}
	if p.Category != nil {
		in.Category = p.Category
	}
	if p.Ingredients != nil {
		in.Ingredients = p.Ingredients
	}
	if p.IngredientsRaw != nil {
		in.IngredientsRaw = p.IngredientsRaw
	}
	if p.Instructions != nil {
		in.Instructions = *p.Instructions
	}
	if p.CookingMethods != nil {
		in.CookingMethods = p.CookingMethods
	}
	if p.Implements != nil {
		in.Implements = p.Implements
	}
	if p.Nutrition != nil {
		in.Nutrition = p.Nutrition
	}
	if p.Cuisine != nil {
		in.Cuisine = *p.Cuisine
	}
	if p.NumberOfSteps != nil {
		in.NumberOfSteps = *p.NumberOfSteps
	}
	if p.URL != nil {
		in.URL = *p.URL
	}
	return in
}

// IsEmpty reports whether the patch sets nothing.
func (p *RecipePatch) IsEmpty() bool {
	return p.Name == nil && p.PreparationTime == nil && p.CookingTime == nil &&
		p.Category == nil && p.Ingredients == nil && p.IngredientsRaw == nil &&
		p.Instructions == nil && p.CookingMethods == nil && p.Implements == nil &&
		p.Nutrition == nil && p.Cuisine == nil && p.NumberOfSteps == nil && p.URL == nil
}
