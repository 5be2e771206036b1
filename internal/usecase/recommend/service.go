// Package recommend is the hybrid retrieval engine: vector recall over one of
// the two collections, structured boost/penalty re-ranking, and relational
// hydration into full recipe rows.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tastebud-labs/recipedex/internal/domain"
	"github.com/tastebud-labs/recipedex/internal/domain/search"
	"github.com/tastebud-labs/recipedex/internal/repository/index"
	"github.com/tastebud-labs/recipedex/internal/scoring"
)

// Pools bounds the candidate fan-out of a single search.
type Pools struct {
	// CandidatePool caps the fused candidate set and the single-query limit.
	CandidatePool int
	// WidePrefetch is the unfiltered prefetch size in a fused query.
	WidePrefetch int
	// FilteredPrefetch is the attribute-filtered prefetch size.
	FilteredPrefetch int
	// IngredientThreshold drops low-similarity hits on the ingredient collection.
	IngredientThreshold float64
	// NameThreshold drops low-similarity hits on the name collection.
	NameThreshold float64
}

// DefaultPools are the deployment defaults.
func DefaultPools() Pools {
	return Pools{
		CandidatePool:       200,
		WidePrefetch:        400,
		FilteredPrefetch:    20,
		IngredientThreshold: 0.2,
		NameThreshold:       0.3,
	}
}

// RankedRecipe is a hydrated recipe with its adjusted relevance score.
type RankedRecipe struct {
	Recipe domain.Recipe
	Score  float64
}

// Service executes recommendation searches.
type Service struct {
	index   VectorIndex
	recipes RecipeStore
	embed   domain.Embedder
	weights scoring.Weights
	pools   Pools
	timeout time.Duration
	logger  *zap.Logger
}

// New creates the engine with default weights and pool sizes.
func New(idx VectorIndex, recipes RecipeStore, embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{
		index:   idx,
		recipes: recipes,
		embed:   embed,
		weights: scoring.DefaultWeights(),
		pools:   DefaultPools(),
		logger:  logger,
	}
}

// WithWeights overrides the boost/penalty units.
func (s *Service) WithWeights(w scoring.Weights) *Service {
	s.weights = w
	return s
}

// WithPools overrides the candidate pool bounds and thresholds.
func (s *Service) WithPools(p Pools) *Service {
	s.pools = p
	return s
}

// WithTimeout bounds each search end to end. Zero disables the bound.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// SearchByIngredients retrieves recipes by a comma-separated ingredient text.
// The parsed ingredient list drives both boosting and missing-ingredient
// penalties; category and cuisine are structural filters only.
func (s *Service) SearchByIngredients(ctx context.Context, q search.Query) ([]RankedRecipe, error) {
	ingredients := scoring.NormalizeIngredients(q.Text())
	f := search.BoostFilter(q.Category(), q.Cuisine(), nil)
	return s.search(ctx, index.IngredientCollection, s.pools.IngredientThreshold, q, ingredients, f)
}

// SearchByName retrieves recipes by dish name. Explicitly named ingredients
// participate in both the filtered prefetch and the re-ranking.
func (s *Service) SearchByName(ctx context.Context, q search.Query) ([]RankedRecipe, error) {
	ingredients := scoring.NormalizeList(q.Ingredients())
	f := search.BoostFilter(q.Category(), q.Cuisine(), ingredients)
	return s.search(ctx, index.NameCollection, s.pools.NameThreshold, q, ingredients, f)
}

func (s *Service) search(
	ctx context.Context, collection string, threshold float64,
	q search.Query, ingredients []string, f search.Filter,
) ([]RankedRecipe, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	vec, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty vector for query", domain.ErrEncoding)
	}

	var hits []search.Hit
	if f.IsEmpty() {
		hits, err = s.index.Query(ctx, collection, vec, s.pools.CandidatePool, threshold)
	} else {
		hits, err = s.index.FusedQuery(
			ctx, collection, vec, f,
			s.pools.WidePrefetch, s.pools.FilteredPrefetch, s.pools.CandidatePool, threshold,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	if len(hits) == 0 {
		return []RankedRecipe{}, nil
	}

	// Adjust and collapse to one score per recipe id. Duplicate ids should not
	// survive fusion; if one does, the later hit wins.
	scores := make(map[int64]float64, len(hits))
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		if _, seen := scores[h.ID]; !seen {
			ids = append(ids, h.ID)
		}
		scores[h.ID] = s.weights.Adjust(h.Score, h.Payload, ingredients, q.Category(), q.Cuisine())
	}

	records, err := s.recipes.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHydration, err)
	}
	if dropped := len(ids) - len(records); dropped > 0 {
		s.logger.Warn("stale index entries dropped during hydration",
			zap.String("collection", collection), zap.Int("count", dropped))
	}

	ranked := make([]RankedRecipe, 0, len(records))
	for _, rec := range records {
		score, ok := scores[rec.ID]
		if !ok || math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		ranked = append(ranked, RankedRecipe{Recipe: rec, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Recipe.ID < ranked[j].Recipe.ID
	})
	if len(ranked) > q.K() {
		ranked = ranked[:q.K()]
	}
	return ranked, nil
}
