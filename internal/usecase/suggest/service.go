// Package suggest provides fuzzy ingredient autocomplete over the distinct
// ingredient vocabulary of the relational store.
package suggest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"go.uber.org/zap"

	"github.com/tastebud-labs/recipedex/internal/domain"
)

// candidatePool bounds the first-pass similarity shortlist before the
// heuristic adjustments re-rank it.
const candidatePool = 35

// heuristicUnit is the flat adjustment applied per matching heuristic.
const heuristicUnit = 5.0

// VocabularySource supplies the distinct ingredient names.
type VocabularySource interface {
	FetchVocabulary(ctx context.Context) ([]string, error)
}

// Suggestion is one autocomplete candidate with its adjusted score.
// Scores are on a 0-100-ish scale; heuristics can push them slightly above.
type Suggestion struct {
	Text  string
	Score float64
}

// Service caches the vocabulary and ranks candidates with Jaro-Winkler
// similarity plus completion-oriented heuristics.
type Service struct {
	source VocabularySource
	logger *zap.Logger
	metric *metrics.JaroWinkler

	mu    sync.RWMutex
	vocab []string
}

// New creates the suggestion service. The vocabulary loads lazily on first
// use; call Refresh to warm it eagerly.
func New(source VocabularySource, logger *zap.Logger) *Service {
	m := metrics.NewJaroWinkler()
	m.CaseSensitive = false
	return &Service{source: source, logger: logger, metric: m}
}

// Refresh rebuilds the cached vocabulary from the source. Catalog mutations
// call this so new ingredients become suggestible without a restart.
func (s *Service) Refresh(ctx context.Context) error {
	vocab, err := s.source.FetchVocabulary(ctx)
	if err != nil {
		return fmt.Errorf("refresh vocabulary: %w", err)
	}

	s.mu.Lock()
	s.vocab = vocab
	s.mu.Unlock()

	s.logger.Debug("suggestion vocabulary refreshed", zap.Int("terms", len(vocab)))
	return nil
}

// Suggest returns up to limit vocabulary terms ranked by similarity to input.
func (s *Service) Suggest(ctx context.Context, input string, limit int) ([]Suggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" || limit <= 0 {
		return []Suggestion{}, nil
	}

	vocab, err := s.vocabulary(ctx)
	if err != nil {
		return nil, err
	}

	shortlist := make([]Suggestion, 0, len(vocab))
	for _, term := range vocab {
		score := strutil.Similarity(input, term, s.metric) * 100
		shortlist = append(shortlist, Suggestion{Text: term, Score: score})
	}
	sortSuggestions(shortlist)
	if len(shortlist) > candidatePool {
		shortlist = shortlist[:candidatePool]
	}

	lower := strings.ToLower(input)
	for i := range shortlist {
		shortlist[i].Score += adjust(lower, strings.ToLower(shortlist[i].Text))
	}
	sortSuggestions(shortlist)

	if len(shortlist) > limit {
		shortlist = shortlist[:limit]
	}
	return shortlist, nil
}

// adjust applies completion heuristics on top of raw string similarity:
// multi-word terms and long completions rank down, prefix completions of
// comparable length rank up.
func adjust(input, term string) float64 {
	var delta float64
	if strings.Contains(term, " ") {
		delta -= heuristicUnit
	}
	if !strings.Contains(term, input) {
		delta -= heuristicUnit
	}
	if len(term) >= len(input)+4 {
		delta -= heuristicUnit
	}
	if len(term) <= len(input)+3 {
		delta += heuristicUnit
	}
	if strings.HasPrefix(term, input) {
		delta += heuristicUnit
	}
	return delta
}

func sortSuggestions(list []Suggestion) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].Text < list[j].Text
	})
}

func (s *Service) vocabulary(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	vocab := s.vocab
	s.mu.RUnlock()
	if vocab != nil {
		return vocab, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHydration, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocab, nil
}
