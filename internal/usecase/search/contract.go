package search

import (
	"context"

	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/business"
	"github.com/kailas-cloud/nearby/internal/domain/candidate"
	"github.com/kailas-cloud/nearby/internal/domain/geo"
	"github.com/kailas-cloud/nearby/internal/domain/place"
	"github.com/kailas-cloud/nearby/internal/domain/search/filter"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Catalog is the platform's own business catalog.
type Catalog interface {
	Search(
		ctx context.Context, vector []float32, filters filter.Expression, threshold float64, limit int,
	) ([]candidate.Candidate, error)
	Details(ctx context.Context, businessIDs []string) (map[string]business.Details, error)
}

// Planner turns a user query into short provider search phrases.
type Planner interface {
	Plan(ctx context.Context, query string, n int) ([]string, error)
}

// PlaceFinder searches the external places provider.
type PlaceFinder interface {
	FindPlaces(ctx context.Context, phrase string, near geo.Point, radiusMiles float64, limit int) ([]place.Place, error)
}

// DistanceService resolves travel distance from one origin to many destinations.
// The result has one leg per destination, in order.
type DistanceService interface {
	Distances(ctx context.Context, origin geo.Point, dests []geo.Point) ([]geo.Leg, error)
}
