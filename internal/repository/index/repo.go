// Package index is the vector index store for recipe points: two fixed
// collections (ingredient vectors and name vectors) over one Redis backend.
package index

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tastebud-labs/recipedex/internal/db"
	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

// Collection names. Both collections key points by recipe id, so re-upsert
// overwrites rather than duplicates.
const (
	IngredientCollection = "ingredients"
	NameCollection       = "names"
)

// store is the consumer interface for point operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo exposes upsert, delete, plain KNN query, and fused multi-strategy
// query over the recipe collections.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates an index repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

func (r *Repo) pointKey(collection string, id int64) string {
	return fmt.Sprintf("%s%s:%d", r.keyPrefix, collection, id)
}

func (r *Repo) indexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", r.keyPrefix, collection)
}

// EnsureIndex creates the FT index for a collection if it does not exist.
func (r *Repo) EnsureIndex(ctx context.Context, collection string, dimensions, hnswM, hnswEF int) error {
	def := &db.IndexDefinition{
		Name:            r.indexName(collection),
		Prefix:          r.keyPrefix + collection + ":",
		Dimensions:      dimensions,
		TagFields:       []string{fieldCategory, fieldCuisine, fieldCookingMethods, fieldIngredients},
		NumericFields:   []string{fieldID},
		HNSWM:           hnswM,
		HNSWEFConstruct: hnswEF,
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("ensure index %s: %w", collection, err)
	}
	return nil
}

// Upsert writes a point keyed by the payload's recipe id.
func (r *Repo) Upsert(ctx context.Context, collection string, vec []float32, p search.Payload) error {
	if err := r.store.HSet(ctx, r.pointKey(collection, p.ID), payloadToFields(vec, p)); err != nil {
		return fmt.Errorf("upsert point %s/%d: %w", collection, p.ID, err)
	}
	return nil
}

// Delete removes the point with the given id from a collection.
func (r *Repo) Delete(ctx context.Context, collection string, id int64) error {
	if err := r.store.Del(ctx, r.pointKey(collection, id)); err != nil {
		return fmt.Errorf("delete point %s/%d: %w", collection, id, err)
	}
	return nil
}

// Query runs a single nearest-neighbor query with a similarity threshold.
func (r *Repo) Query(
	ctx context.Context, collection string,
	vec []float32, limit int, threshold float64,
) ([]search.Hit, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:      r.indexName(collection),
		Vector:         vec,
		K:              limit,
		ScoreThreshold: threshold,
		ReturnFields:   returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return entriesToHits(sr), nil
}

// FusedQuery issues two prefetches against the same collection — a wide
// unfiltered nearest-neighbor ranking (with threshold) and a narrow ranking
// restricted to the should-filter — and fuses them with Reciprocal Rank
// Fusion capped to limit. A hard filter alone can starve results when few
// points match every attribute; fusing keeps recall while favoring matches.
func (r *Repo) FusedQuery(
	ctx context.Context, collection string,
	vec []float32, f search.Filter,
	wideLimit, filteredLimit, limit int, threshold float64,
) ([]search.Hit, error) {
	var wide, filtered []search.Hit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sr, err := r.store.SearchKNN(gctx, &db.KNNQuery{
			IndexName:      r.indexName(collection),
			Vector:         vec,
			K:              wideLimit,
			ScoreThreshold: threshold,
			ReturnFields:   returnFields,
		})
		if err != nil {
			return fmt.Errorf("wide prefetch %s: %w", collection, err)
		}
		wide = entriesToHits(sr)
		return nil
	})
	g.Go(func() error {
		sr, err := r.store.SearchKNN(gctx, &db.KNNQuery{
			IndexName:    r.indexName(collection),
			Vector:       vec,
			K:            filteredLimit,
			Filter:       f,
			ReturnFields: returnFields,
		})
		if err != nil {
			return fmt.Errorf("filtered prefetch %s: %w", collection, err)
		}
		filtered = entriesToHits(sr)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return fuseRRF(wide, filtered, limit), nil
}

func entriesToHits(sr *db.SearchResult) []search.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	hits := make([]search.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		if h, ok := entryToHit(e); ok {
			hits = append(hits, h)
		}
	}
	return hits
}
