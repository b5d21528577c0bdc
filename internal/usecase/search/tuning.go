package search

import (
	"time"

	"github.com/kailas-cloud/nearby/internal/domain/geo"
)

// Weights are the composite ranking coefficients.
type Weights struct {
	Similarity float64
	Source     float64
	Open       float64
	Proximity  float64
}

// Tuning holds every pipeline constant. Zero fields take the defaults, except the
// ranking fields, which are pointers so that an explicit zero is kept.
type Tuning struct {
	// Catalog retrieval runs with a low threshold and a cap; the selector applies the caller's threshold.
	CatalogThreshold float64
	CatalogLimit     int
	// CatalogSlots is how many catalog candidates survive selection, regardless of the requested count.
	CatalogSlots int

	MaxQueries           int
	PlacesPerPhrase      int
	BranchTimeout        time.Duration
	RequestTimeout       time.Duration
	DiscoveryRadiusMiles float64
	// DefaultLocation centers discovery when the request has no origin.
	DefaultLocation         geo.Point
	MinDiscoveredSimilarity float64

	MaxRadiusMiles    float64
	ProximityCapMiles float64

	Weights                *Weights
	RankingBoostThreshold  *float64
	BaselineSourcePriority *float64
}

// DefaultTuning returns the production defaults.
func DefaultTuning() Tuning {
	return Tuning{
		CatalogThreshold:       0.1,
		CatalogLimit:           50,
		CatalogSlots:           6,
		MaxQueries:             5,
		PlacesPerPhrase:        10,
		BranchTimeout:          4 * time.Second,
		RequestTimeout:         20 * time.Second,
		DiscoveryRadiusMiles:   10,
		DefaultLocation:        geo.Point{Lat: 37.7749, Lng: -122.4194},
		MaxRadiusMiles:         10,
		ProximityCapMiles:      10,
		Weights:                &Weights{Similarity: 0.45, Source: 0.25, Open: 0.20, Proximity: 0.10},
		RankingBoostThreshold:  ptr(0.5),
		BaselineSourcePriority: ptr(0.3),
	}
}

// withDefaults fills zero fields from DefaultTuning. MinDiscoveredSimilarity
// defaults to zero, so it is taken as given.
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.CatalogThreshold == 0 {
		t.CatalogThreshold = d.CatalogThreshold
	}
	if t.CatalogLimit <= 0 {
		t.CatalogLimit = d.CatalogLimit
	}
	if t.CatalogSlots <= 0 {
		t.CatalogSlots = d.CatalogSlots
	}
	if t.MaxQueries <= 0 {
		t.MaxQueries = d.MaxQueries
	}
	if t.PlacesPerPhrase <= 0 {
		t.PlacesPerPhrase = d.PlacesPerPhrase
	}
	if t.BranchTimeout <= 0 {
		t.BranchTimeout = d.BranchTimeout
	}
	if t.RequestTimeout <= 0 {
		t.RequestTimeout = d.RequestTimeout
	}
	if t.DiscoveryRadiusMiles <= 0 {
		t.DiscoveryRadiusMiles = d.DiscoveryRadiusMiles
	}
	if t.DefaultLocation == (geo.Point{}) {
		t.DefaultLocation = d.DefaultLocation
	}
	if t.MaxRadiusMiles <= 0 {
		t.MaxRadiusMiles = d.MaxRadiusMiles
	}
	if t.ProximityCapMiles <= 0 {
		t.ProximityCapMiles = d.ProximityCapMiles
	}
	if t.Weights == nil {
		t.Weights = d.Weights
	}
	if t.RankingBoostThreshold == nil {
		t.RankingBoostThreshold = d.RankingBoostThreshold
	}
	if t.BaselineSourcePriority == nil {
		t.BaselineSourcePriority = d.BaselineSourcePriority
	}
	return t
}

func ptr[T any](v T) *T { return &v }
