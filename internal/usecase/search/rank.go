package search

import (
	"sort"

	"github.com/kailas-cloud/nearby/internal/domain/candidate"
)

// compositeScore blends similarity, source priority, open state and proximity.
func compositeScore(c *candidate.Candidate, t *Tuning) float64 {
	source := *t.BaselineSourcePriority
	if c.IsCatalog() && c.Similarity >= *t.RankingBoostThreshold {
		source = 1
	}

	open := 0.0
	if c.IsOpen {
		open = 1
	}

	proximity := 0.0
	if c.HasDistance() {
		proximity = 1 - min(c.DistanceMiles/t.ProximityCapMiles, 1)
	}

	w := *t.Weights
	return w.Similarity*c.Similarity + w.Source*source + w.Open*open + w.Proximity*proximity
}

// rank scores every candidate, orders them by composite score (stable) and truncates to count.
func rank(cands []candidate.Candidate, t *Tuning, count int) []candidate.Candidate {
	for i := range cands {
		cands[i].CompositeScore = compositeScore(&cands[i], t)
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].CompositeScore > cands[j].CompositeScore })
	if len(cands) > count {
		cands = cands[:count]
	}
	return cands
}
