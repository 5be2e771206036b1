package index

import (
	"sort"

	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges the wide and filtered prefetch rankings via Reciprocal Rank
// Fusion: score(p) = sum of 1/(k + rank_i(p)) over the rankings where p
// appears. The fused score is rank-based, so a point appearing in both lists
// gets a deterministic score regardless of either raw similarity; its payload
// is taken from the wide list when present. Ties break by ascending id.
func fuseRRF(wide, filtered []search.Hit, limit int) []search.Hit {
	type scored struct {
		hit    search.Hit
		score  float64
		inWide bool
	}

	merged := make(map[int64]*scored, len(wide)+len(filtered))

	for rank, h := range wide {
		merged[h.ID] = &scored{hit: h, score: 1.0 / float64(rrfK+rank+1), inWide: true}
	}
	for rank, h := range filtered {
		s := 1.0 / float64(rrfK+rank+1)
		if existing, ok := merged[h.ID]; ok {
			existing.score += s
			// wide payload takes priority
		} else {
			merged[h.ID] = &scored{hit: h, score: s}
		}
	}

	fused := make([]search.Hit, 0, len(merged))
	for _, s := range merged {
		h := s.hit
		h.Score = s.score
		fused = append(fused, h)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ID < fused[j].ID
	})

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}
