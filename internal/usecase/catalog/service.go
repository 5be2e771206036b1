// Package catalog owns recipe maintenance: relational writes first, then
// best-effort synchronization of the two derived vector collections. Index
// failures degrade search freshness but never fail the mutation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tastebud-labs/recipedex/internal/domain"
	"github.com/tastebud-labs/recipedex/internal/domain/search"
	"github.com/tastebud-labs/recipedex/internal/repository/index"
)

// Service applies catalog mutations and keeps the index in sync.
type Service struct {
	recipes RecipeStore
	idx     VectorIndex
	embed   domain.Embedder
	vocab   VocabularyRefresher
	logger  *zap.Logger
}

// New creates the catalog service. vocab may be nil when autocomplete is not
// wired in.
func New(recipes RecipeStore, idx VectorIndex, embed domain.Embedder, vocab VocabularyRefresher, logger *zap.Logger) *Service {
	return &Service{recipes: recipes, idx: idx, embed: embed, vocab: vocab, logger: logger}
}

// Create validates and stores a new recipe, then indexes it in both
// collections. The returned warning, when non-nil, means the row exists but
// one or both index points could not be written.
func (s *Service) Create(ctx context.Context, in domain.RecipeInput) (domain.Recipe, *domain.SyncWarning, error) {
	if err := in.Validate(); err != nil {
		return domain.Recipe{}, nil, err
	}

	id, err := s.recipes.Insert(ctx, in)
	if err != nil {
		return domain.Recipe{}, nil, fmt.Errorf("insert recipe: %w", err)
	}
	rec, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return domain.Recipe{}, nil, fmt.Errorf("read back recipe %d: %w", id, err)
	}

	warn := s.syncUpsert(ctx, id, in)
	s.refreshVocabulary(ctx)
	return rec, warn, nil
}

// Update applies a partial patch to an existing recipe and rewrites both
// index points from the merged state.
func (s *Service) Update(ctx context.Context, id int64, patch domain.RecipePatch) (domain.Recipe, *domain.SyncWarning, error) {
	if err := patch.Validate(); err != nil {
		return domain.Recipe{}, nil, err
	}

	existing, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return domain.Recipe{}, nil, err
	}
	if patch.IsEmpty() {
		return existing, nil, nil
	}

	merged := patch.Apply(existing)
	if err := merged.Validate(); err != nil {
		return domain.Recipe{}, nil, err
	}
	if err := s.recipes.Update(ctx, id, merged); err != nil {
		return domain.Recipe{}, nil, err
	}
	rec, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return domain.Recipe{}, nil, fmt.Errorf("read back recipe %d: %w", id, err)
	}

	warn := s.syncUpsert(ctx, id, merged)
	s.refreshVocabulary(ctx)
	return rec, warn, nil
}

// Delete removes the row and both index points. A missing row is
// domain.ErrNotFound; index removal failures are warnings.
func (s *Service) Delete(ctx context.Context, id int64) (*domain.SyncWarning, error) {
	if err := s.recipes.Delete(ctx, id); err != nil {
		return nil, err
	}

	var errs []error
	for _, coll := range []string{index.IngredientCollection, index.NameCollection} {
		if err := s.idx.Delete(ctx, coll, id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", coll, err))
		}
	}
	s.refreshVocabulary(ctx)

	if len(errs) > 0 {
		warn := domain.NewSyncWarning(id, "remove", errors.Join(errs...))
		s.logger.Warn("index removal incomplete", zap.Int64("recipe_id", id), zap.Error(warn))
		return warn, nil
	}
	return nil, nil
}

// syncUpsert embeds and writes both collection points. All failures collapse
// into one warning; the relational write has already committed.
func (s *Service) syncUpsert(ctx context.Context, id int64, in domain.RecipeInput) *domain.SyncWarning {
	payload := search.Payload{
		ID:             id,
		Category:       in.Category,
		Cuisine:        in.Cuisine,
		CookingMethods: in.CookingMethods,
		Ingredients:    in.Ingredients,
	}

	var errs []error
	docs := []struct {
		collection string
		text       string
	}{
		{index.IngredientCollection, strings.Join(in.Ingredients, ", ")},
		{index.NameCollection, in.Name},
	}
	for _, d := range docs {
		vec, err := s.embed.Embed(ctx, d.text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: embed: %w", d.collection, err))
			continue
		}
		if err := s.idx.Upsert(ctx, d.collection, vec, payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.collection, err))
		}
	}

	if len(errs) > 0 {
		warn := domain.NewSyncWarning(id, "upsert", errors.Join(errs...))
		s.logger.Warn("index sync incomplete", zap.Int64("recipe_id", id), zap.Error(warn))
		return warn
	}
	return nil
}

func (s *Service) refreshVocabulary(ctx context.Context) {
	if s.vocab == nil {
		return
	}
	if err := s.vocab.Refresh(ctx); err != nil {
		s.logger.Warn("vocabulary refresh failed", zap.Error(err))
	}
}
