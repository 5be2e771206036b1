// Package db defines the vector point store contract implemented by the
// Redis backend. Consumers use the narrow sub-interfaces.
package db

import (
	"context"
	"time"

	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

// Store is the full store facade.
type Store interface {
	Pinger
	PointStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PointStore writes and removes vector points stored as hashes.
type PointStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs KNN queries over an FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// IndexDefinition describes an FT vector index over hash keys.
type IndexDefinition struct {
	Name            string
	Prefix          string
	Dimensions      int
	TagFields       []string
	NumericFields   []string
	HNSWM           int
	HNSWEFConstruct int
}

// KNNQuery is a nearest-neighbor query. ScoreThreshold (similarity, [0,1])
// discards weaker matches after the distance conversion; zero disables it.
// Filter restricts candidates to points matching any should condition.
type KNNQuery struct {
	IndexName      string
	Vector         []float32
	K              int
	ScoreThreshold float64
	Filter         search.Filter
	ReturnFields   []string
}

// SearchEntry is one returned point: hash key, similarity score, raw fields.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is an ordered FT.SEARCH result page.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
