package search

import (
	"context"

	"github.com/kailas-cloud/nearby/internal/domain/candidate"
	"github.com/kailas-cloud/nearby/internal/domain/geo"
)

// StraightLine is a DistanceService that measures great-circle distance.
// It does not estimate travel time, so every leg has an Unknown duration.
type StraightLine struct{}

// Distances implements DistanceService.
func (StraightLine) Distances(_ context.Context, origin geo.Point, dests []geo.Point) ([]geo.Leg, error) {
	legs := make([]geo.Leg, len(dests))
	for i, d := range dests {
		legs[i] = geo.Leg{Miles: geo.DistanceMiles(origin, d), Minutes: candidate.Unknown, Known: true}
	}
	return legs, nil
}
