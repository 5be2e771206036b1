package index

import (
	"strconv"
	"strings"

	"github.com/tastebud-labs/recipedex/internal/db"
	dbredis "github.com/tastebud-labs/recipedex/internal/db/redis"
	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

// Hash field names for a recipe point. List-valued payload attributes are
// stored as TAG fields with the default comma separator; ingredient and
// category names never contain commas.
const (
	fieldID             = "id"
	fieldVector         = "vector"
	fieldCategory       = "category"
	fieldCuisine        = "cuisine"
	fieldCookingMethods = "cooking_methods"
	fieldIngredients    = "ingredients"
)

var returnFields = []string{
	fieldID, fieldCategory, fieldCuisine, fieldCookingMethods, fieldIngredients,
}

// payloadToFields flattens a payload and vector into hash fields.
func payloadToFields(vec []float32, p search.Payload) map[string]string {
	fields := map[string]string{
		fieldID:     strconv.FormatInt(p.ID, 10),
		fieldVector: dbredis.VectorToBytes(vec),
	}
	if len(p.Category) > 0 {
		fields[fieldCategory] = strings.Join(p.Category, ",")
	}
	if p.Cuisine != "" {
		fields[fieldCuisine] = p.Cuisine
	}
	if len(p.CookingMethods) > 0 {
		fields[fieldCookingMethods] = strings.Join(p.CookingMethods, ",")
	}
	if len(p.Ingredients) > 0 {
		fields[fieldIngredients] = strings.Join(p.Ingredients, ",")
	}
	return fields
}

// entryToHit parses a search entry back into a candidate hit. Entries whose
// id field is missing or malformed yield ok=false and are skipped upstream.
func entryToHit(e db.SearchEntry) (search.Hit, bool) {
	idStr, found := e.Fields[fieldID]
	if !found {
		return search.Hit{}, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return search.Hit{}, false
	}

	return search.Hit{
		ID:    id,
		Score: e.Score,
		Payload: search.Payload{
			ID:             id,
			Category:       splitTag(e.Fields[fieldCategory]),
			Cuisine:        e.Fields[fieldCuisine],
			CookingMethods: splitTag(e.Fields[fieldCookingMethods]),
			Ingredients:    splitTag(e.Fields[fieldIngredients]),
		},
	}, true
}

func splitTag(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
