// Package candidate holds the record that flows through every search pipeline stage.
package candidate

import (
	"math"

	"github.com/kailas-cloud/nearby/internal/domain/geo"
)

// Source tags where a candidate came from. It never changes after creation.
type Source string

const (
	// SourceCatalog marks candidates from the platform catalog.
	SourceCatalog Source = "catalog"
	// SourceDiscovered marks candidates found through the places provider.
	SourceDiscovered Source = "discovered"
)

// Unknown is the sentinel for distance and duration that have not been resolved.
// Zero is a real distance, so it cannot serve as "unknown".
const Unknown = -1.0

// DiscoveredIDPrefix keeps provider place ids from colliding with catalog ids.
const DiscoveredIDPrefix = "discovered_"

// Location is an address plus optional coordinates.
type Location struct {
	Address   string
	Lat       float64
	Lng       float64
	HasCoords bool
}

// Point returns the coordinates as a geo.Point. Only meaningful when HasCoords is set.
func (l Location) Point() geo.Point {
	return geo.Point{Lat: l.Lat, Lng: l.Lng}
}

// Contact holds the ways to reach a business.
type Contact struct {
	Phone   string
	Website string
	Email   string
}

// Candidate is a single search hit from either source.
type Candidate struct {
	ID          string
	Source      Source
	BusinessKey string
	// BusinessID links a catalog offering to its details record. Empty for discovered.
	BusinessID string

	Title       string
	Description string
	Category    string
	Tags        []string
	Location    Location

	Similarity float64
	IsOpen     bool

	DistanceMiles   float64
	DurationMinutes float64

	// Enrichment details. Catalog candidates get them from the details join,
	// discovered candidates from the provider payload.
	BusinessName string
	Images       []string
	Hours        map[string]string
	Contact      Contact
	Verified     bool
	Rating       float64
	ReviewCount  int
	PlaceID      string
	OriginPhrase string

	// CompositeScore is written only by the ranker.
	CompositeScore float64
}

// New creates a candidate with distance and duration set to Unknown.
func New(id string, source Source, businessKey string) Candidate {
	return Candidate{
		ID:              id,
		Source:          source,
		BusinessKey:     businessKey,
		DistanceMiles:   Unknown,
		DurationMinutes: Unknown,
	}
}

// HasDistance reports whether DistanceMiles holds a resolved, finite value.
func (c *Candidate) HasDistance() bool {
	return IsKnown(c.DistanceMiles)
}

// HasDuration reports whether DurationMinutes holds a resolved, finite value.
func (c *Candidate) HasDuration() bool {
	return IsKnown(c.DurationMinutes)
}

// IsCatalog reports whether the candidate came from the catalog.
func (c *Candidate) IsCatalog() bool {
	return c.Source == SourceCatalog
}

// IsKnown reports whether v is a resolved measurement rather than the Unknown sentinel.
func IsKnown(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// CountBySource returns how many candidates came from each source.
func CountBySource(cands []Candidate) (catalog, discovered int) {
	for i := range cands {
		switch cands[i].Source {
		case SourceCatalog:
			catalog++
		case SourceDiscovered:
			discovered++
		}
	}
	return catalog, discovered
}
