package catalog

import (
	"context"

	"github.com/tastebud-labs/recipedex/internal/domain"
	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

// RecipeStore is the authoritative relational store contract.
type RecipeStore interface {
	Insert(ctx context.Context, in domain.RecipeInput) (int64, error)
	Update(ctx context.Context, id int64, in domain.RecipeInput) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (domain.Recipe, error)
}

// VectorIndex maintains the derived points in both collections.
type VectorIndex interface {
	Upsert(ctx context.Context, collection string, vec []float32, p search.Payload) error
	Delete(ctx context.Context, collection string, id int64) error
}

// VocabularyRefresher is notified after catalog mutations so autocomplete
// picks up new ingredient names.
type VocabularyRefresher interface {
	Refresh(ctx context.Context) error
}
