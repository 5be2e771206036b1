package recommend

import (
	"context"

	"github.com/tastebud-labs/recipedex/internal/domain"
	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

// VectorIndex is the nearest-neighbor store contract the engine requires.
type VectorIndex interface {
	Query(
		ctx context.Context, collection string,
		vec []float32, limit int, threshold float64,
	) ([]search.Hit, error)

	FusedQuery(
		ctx context.Context, collection string,
		vec []float32, f search.Filter,
		wideLimit, filteredLimit, limit int, threshold float64,
	) ([]search.Hit, error)
}

// RecipeStore hydrates candidate ids into authoritative rows.
type RecipeStore interface {
	FetchByIDs(ctx context.Context, ids []int64) ([]domain.Recipe, error)
}
