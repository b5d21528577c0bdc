package search

import (
	"sort"

	"github.com/kailas-cloud/nearby/internal/domain/candidate"
)

// selectRelevant keeps catalog candidates at or above threshold, best first, at most slots.
func selectRelevant(cands []candidate.Candidate, threshold float64, slots int) []candidate.Candidate {
	out := make([]candidate.Candidate, 0, min(len(cands), slots))
	for i := range cands {
		if cands[i].Similarity >= threshold {
			out = append(out, cands[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > slots {
		out = out[:slots]
	}
	return out
}

// merge unions both sources keyed by business key. Catalog candidates are
// placed first and win every collision; within a source the first entry wins.
func merge(catalog, discovered []candidate.Candidate) []candidate.Candidate {
	seen := make(map[string]struct{}, len(catalog)+len(discovered))
	out := make([]candidate.Candidate, 0, len(catalog)+len(discovered))
	add := func(c *candidate.Candidate) {
		if _, ok := seen[c.BusinessKey]; ok {
			return
		}
		seen[c.BusinessKey] = struct{}{}
		out = append(out, *c)
	}
	for i := range catalog {
		add(&catalog[i])
	}
	for i := range discovered {
		add(&discovered[i])
	}
	return out
}

// withinRadius drops candidates whose known distance exceeds maxMiles.
// Candidates with an unknown distance are kept.
func withinRadius(cands []candidate.Candidate, maxMiles float64) []candidate.Candidate {
	out := cands[:0]
	for i := range cands {
		if cands[i].HasDistance() && cands[i].DistanceMiles > maxMiles {
			continue
		}
		out = append(out, cands[i])
	}
	return out
}
