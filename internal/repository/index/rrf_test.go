package index

import (
	"math"
	"testing"

	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

func hit(id int64, score float64) search.Hit {
	return search.Hit{ID: id, Score: score, Payload: search.Payload{ID: id}}
}

func TestFuseRRF_DisjointLists(t *testing.T) {
	wide := []search.Hit{hit(1, 0.9), hit(2, 0.8)}
	filtered := []search.Hit{hit(3, 0.7)}

	fused := fuseRRF(wide, filtered, 10)
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused hits, got %d", len(fused))
	}
	// Rank 1 in either list scores 1/61; id tie-break puts 1 before 3.
	if fused[0].ID != 1 || fused[1].ID != 3 {
		t.Errorf("order = [%d %d %d], want [1 3 2]", fused[0].ID, fused[1].ID, fused[2].ID)
	}
}

func TestFuseRRF_DuplicateAccumulatesRanks(t *testing.T) {
	wide := []search.Hit{hit(1, 0.9), hit(2, 0.8)}
	filtered := []search.Hit{hit(2, 0.5)}

	fused := fuseRRF(wide, filtered, 10)
	if fused[0].ID != 2 {
		t.Fatalf("duplicated hit should rank first, got id %d", fused[0].ID)
	}
	want := 1.0/62 + 1.0/61
	if math.Abs(fused[0].Score-want) > 1e-12 {
		t.Errorf("fused score = %f, want %f", fused[0].Score, want)
	}
}

func TestFuseRRF_WidePayloadWins(t *testing.T) {
	w := hit(7, 0.9)
	w.Payload.Cuisine = "Asian"
	f := hit(7, 0.5)
	f.Payload.Cuisine = "European"

	fused := fuseRRF([]search.Hit{w}, []search.Hit{f}, 10)
	if len(fused) != 1 {
		t.Fatalf("expected 1 fused hit, got %d", len(fused))
	}
	if fused[0].Payload.Cuisine != "Asian" {
		t.Errorf("payload cuisine = %q, want the wide-list payload", fused[0].Payload.Cuisine)
	}
}

func TestFuseRRF_CapsToLimit(t *testing.T) {
	var wide []search.Hit
	for i := int64(1); i <= 10; i++ {
		wide = append(wide, hit(i, 1.0/float64(i)))
	}
	fused := fuseRRF(wide, nil, 3)
	if len(fused) != 3 {
		t.Errorf("expected 3 hits after cap, got %d", len(fused))
	}
}

func TestFuseRRF_Deterministic(t *testing.T) {
	wide := []search.Hit{hit(3, 0.9), hit(1, 0.8), hit(2, 0.7)}
	filtered := []search.Hit{hit(2, 0.6), hit(3, 0.5)}

	first := fuseRRF(wide, filtered, 10)
	for n := 0; n < 20; n++ {
		again := fuseRRF(wide, filtered, 10)
		for i := range first {
			if first[i].ID != again[i].ID || first[i].Score != again[i].Score {
				t.Fatalf("fusion not deterministic at %d: %v vs %v", i, first[i], again[i])
			}
		}
	}
}

func TestFuseRRF_Empty(t *testing.T) {
	if got := fuseRRF(nil, nil, 10); len(got) != 0 {
		t.Errorf("expected empty fusion, got %d hits", len(got))
	}
}
