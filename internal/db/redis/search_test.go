package redis

import (
	"strings"
	"testing"

	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

func TestBuildFilter_Empty(t *testing.T) {
	if got := BuildFilter(search.Filter{}); got != "" {
		t.Errorf("BuildFilter(empty) = %q, want empty", got)
	}
}

func TestBuildFilter_SingleCondition(t *testing.T) {
	f := search.BoostFilter("", "Asian", nil)
	if got := BuildFilter(f); got != "@cuisine:{Asian}" {
		t.Errorf("BuildFilter = %q", got)
	}
}

func TestBuildFilter_ShouldGroup(t *testing.T) {
	f := search.BoostFilter("Soup", "Asian", []string{"miso"})
	got := BuildFilter(f)
	want := "(@category:{Soup} | @cuisine:{Asian} | @ingredients:{miso})"
	if got != want {
		t.Errorf("BuildFilter = %q, want %q", got, want)
	}
}

func TestBuildFilter_EscapesTagValues(t *testing.T) {
	f := search.BoostFilter("Breakfast & Brunch", "", nil)
	got := BuildFilter(f)
	if !strings.Contains(got, `Breakfast\ \&\ Brunch`) {
		t.Errorf("BuildFilter = %q, expected escaped spaces and ampersand", got)
	}
}

func TestBuildKNNQuery_NoFilter(t *testing.T) {
	got := BuildKNNQuery(search.Filter{}, 200)
	if got != "*=>[KNN 200 @vector $BLOB]" {
		t.Errorf("BuildKNNQuery = %q", got)
	}
}

func TestBuildKNNQuery_WithFilter(t *testing.T) {
	f := search.BoostFilter("", "Asian", nil)
	got := BuildKNNQuery(f, 20)
	if got != "(@cuisine:{Asian})=>[KNN 20 @vector $BLOB]" {
		t.Errorf("BuildKNNQuery = %q", got)
	}
}

func TestVectorCodec_RoundTrip(t *testing.T) {
	in := []float32{0.1, -0.5, 1, 0}
	out := BytesToVector(VectorToBytes(in))
	if len(out) != len(in) {
		t.Fatalf("round-trip length = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("round-trip[%d] = %f, want %f", i, out[i], in[i])
		}
	}
}

func TestBytesToVector_InvalidLength(t *testing.T) {
	if got := BytesToVector("abc"); got != nil {
		t.Errorf("BytesToVector(odd bytes) = %v, want nil", got)
	}
}
