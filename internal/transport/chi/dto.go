package chi

import (
	"time"

	"github.com/tastebud-labs/recipedex/internal/domain"
	"github.com/tastebud-labs/recipedex/internal/usecase/recommend"
	"github.com/tastebud-labs/recipedex/internal/usecase/suggest"
)

// Error codes returned in the JSON error envelope.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "recipe_not_found"
	codeEncodingFailed   = "encoding_failed"
	codeRetrievalFailed  = "retrieval_failed"
	codeHydrationFailed  = "hydration_failed"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type recipeResponse struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	PreparationTime int            `json:"preparation_time,omitempty"`
	CookingTime     int            `json:"cooking_time,omitempty"`
	Category        []string       `json:"category"`
	Ingredients     []string       `json:"ingredients"`
	IngredientsRaw  []string       `json:"ingredients_raw,omitempty"`
	Instructions    string         `json:"instructions,omitempty"`
	CookingMethods  []string       `json:"cooking_methods,omitempty"`
	Implements      []string       `json:"implements,omitempty"`
	Nutrition       map[string]any `json:"nutrition,omitempty"`
	Cuisine         string         `json:"cuisine"`
	NumberOfSteps   int            `json:"number_of_steps,omitempty"`
	URL             string         `json:"url,omitempty"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
	RatingValue     float64        `json:"rating_value,omitempty"`
	RatingCount     int            `json:"rating_count,omitempty"`
}

func recipeToDTO(r domain.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:              r.ID,
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
		RatingValue:     r.RatingValue,
		RatingCount:     r.RatingCount,
	}
	if !r.CreatedAt.IsZero() {
		ts := r.CreatedAt.UTC()
		resp.CreatedAt = &ts
	}
	return resp
}

type rankedItem struct {
	Recipe recipeResponse `json:"recipe"`
	Score  float64        `json:"score"`
}

type searchResponse struct {
	Items []rankedItem `json:"items"`
	Count int          `json:"count"`
}

func searchToDTO(ranked []recommend.RankedRecipe) searchResponse {
	items := make([]rankedItem, len(ranked))
	for i, r := range ranked {
		items[i] = rankedItem{Recipe: recipeToDTO(r.Recipe), Score: r.Score}
	}
	return searchResponse{Items: items, Count: len(items)}
}

type suggestionItem struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type suggestResponse struct {
	Items []suggestionItem `json:"items"`
}

func suggestionsToDTO(suggestions []suggest.Suggestion) suggestResponse {
	items := make([]suggestionItem, len(suggestions))
	for i, s := range suggestions {
		items[i] = suggestionItem{Text: s.Text, Score: s.Score}
	}
	return suggestResponse{Items: items}
}

type recipeRequest struct {
	Name            string         `json:"name"`
	PreparationTime int            `json:"preparation_time"`
	CookingTime     int            `json:"cooking_time"`
	Category        []string       `json:"category"`
	Ingredients     []string       `json:"ingredients"`
	IngredientsRaw  []string       `json:"ingredients_raw"`
	Instructions    string         `json:"instructions"`
	CookingMethods  []string       `json:"cooking_methods"`
	Implements      []string       `json:"implements"`
	Nutrition       map[string]any `json:"nutrition"`
	Cuisine         string         `json:"cuisine"`
	NumberOfSteps   int            `json:"number_of_steps"`
	URL             string         `json:"url"`
}

func (r recipeRequest) toInput() domain.RecipeInput {
	return domain.RecipeInput{
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
}

// patchRequest distinguishes absent fields from explicit zero values via
// pointers; list and map fields use nil-vs-empty for the same purpose.
type patchRequest struct {
	Name            *string        `json:"name"`
	PreparationTime *int           `json:"preparation_time"`
	CookingTime     *int           `json:"cooking_time"`
	Category        []string       `json:"category"`
	Ingredients     []string       `json:"ingredients"`
	IngredientsRaw  []string       `json:"ingredients_raw"`
	Instructions    *string        `json:"instructions"`
	CookingMethods  []string       `json:"cooking_methods"`
	Implements      []string       `json:"implements"`
	Nutrition       map[string]any `json:"nutrition"`
	Cuisine         *string        `json:"cuisine"`
	NumberOfSteps   *int           `json:"number_of_steps"`
	URL             *string        `json:"url"`
}

func (r patchRequest) toPatch() domain.RecipePatch {
	return domain.RecipePatch{
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
}

type mutationResponse struct {
	Recipe  recipeResponse `json:"recipe"`
	Warning *string        `json:"warning,omitempty"`
}

type deleteResponse struct {
	Deleted bool    `json:"deleted"`
	Warning *string `json:"warning,omitempty"`
}

func warningText(w *domain.SyncWarning) *string {
	if w == nil {
		return nil
	}
	msg := w.Error()
	return &msg
}
