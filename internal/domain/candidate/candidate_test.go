package candidate

import (
	"math"
	"testing"
)

func TestNew_DistanceUnknown(t *testing.T) {
	c := New("offer-1", SourceCatalog, "biz-1")
	if c.HasDistance() {
		t.Error("new candidate should not have a distance")
	}
	if c.HasDuration() {
		t.Error("new candidate should not have a duration")
	}
	if !c.IsCatalog() {
		t.Error("expected catalog candidate")
	}
}

func TestIsKnown(t *testing.T) {
	tests := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{3.2, true},
		{Unknown, false},
		{math.Inf(1), false},
		{math.NaN(), false},
	}
	for _, tc := range tests {
		if got := IsKnown(tc.v); got != tc.want {
			t.Errorf("IsKnown(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestCountBySource(t *testing.T) {
	cands := []Candidate{
		New("a", SourceCatalog, "a"),
		New("b", SourceDiscovered, "b"),
		New("c", SourceDiscovered, "c"),
	}
	catalog, discovered := CountBySource(cands)
	if catalog != 1 || discovered != 2 {
		t.Errorf("CountBySource = (%d, %d), want (1, 2)", catalog, discovered)
	}
}
