package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEncoding signals that the embedding provider failed or returned a malformed vector.
	ErrEncoding = errors.New("query encoding failed")
	// ErrRetrieval signals that the vector index was unreachable or returned malformed data.
	ErrRetrieval = errors.New("vector retrieval failed")
	// ErrHydration signals that the relational fetch failed after a successful retrieval.
	ErrHydration = errors.New("candidate hydration failed")
	// ErrNotFound signals a missing recipe row.
	ErrNotFound = errors.New("recipe not found")
	// ErrInvalidInput signals a request that fails boundary validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownCategory signals a category outside the closed set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownCuisine signals a cuisine outside the closed set.
	ErrUnknownCuisine = errors.New("unknown cuisine")
)

// SyncWarning reports a failed vector index write after the relational write
// already succeeded. It is attached to an otherwise successful response and
// never fails the operation; the relational store stays authoritative.
type SyncWarning struct {
	RecipeID int64
	Op       string // "upsert" or "remove"
	Err      error
}

func (w *SyncWarning) Error() string {
	return fmt.Sprintf("index %s for recipe %d failed: %v", w.Op, w.RecipeID, w.Err)
}

func (w *SyncWarning) Unwrap() error { return w.Err }

// NewSyncWarning creates an index synchronization warning.
func NewSyncWarning(recipeID int64, op string, err error) *SyncWarning {
	return &SyncWarning{RecipeID: recipeID, Op: op, Err: err}
}
