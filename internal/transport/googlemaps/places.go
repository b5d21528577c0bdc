package googlemaps

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/kailas-cloud/nearby/internal/domain/geo"
	"github.com/kailas-cloud/nearby/internal/domain/place"
	"github.com/kailas-cloud/nearby/internal/metrics"
)

// maxTextSearchRadiusMeters is the largest radius the Places text search accepts.
const maxTextSearchRadiusMeters = 50_000

// Places finds businesses with the Places text search.
type Places struct {
	client *maps.Client
	logger *zap.Logger
}

// NewPlaces creates a places finder.
func NewPlaces(cfg *Config) (*Places, error) {
	c, err := newMapsClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Places{client: c, logger: loggerOrNop(cfg.Logger)}, nil
}

// FindPlaces returns at most limit operational places matching phrase around near.
func (p *Places) FindPlaces(
	ctx context.Context, phrase string, near geo.Point, radiusMiles float64, limit int,
) ([]place.Place, error) {
	radius := math.Min(geo.MilesToMeters(radiusMiles), maxTextSearchRadiusMeters)
	if radius < 1 {
		// The API rejects a location without a radius.
		radius = 1
	}
	req := &maps.TextSearchRequest{
		Query:    phrase,
		Location: &maps.LatLng{Lat: near.Lat, Lng: near.Lng},
		Radius:   uint(radius),
	}

	start := time.Now()
	resp, err := p.client.TextSearch(ctx, req)
	metrics.ObserveExternal("places", start, err)
	if err != nil {
		return nil, fmt.Errorf("places text search %q: %w", phrase, err)
	}

	out := make([]place.Place, 0, min(limit, len(resp.Results)))
	for i := range resp.Results {
		r := &resp.Results[i]
		if r.PlaceID == "" || isClosedForGood(r.BusinessStatus) {
			continue
		}
		out = append(out, toPlace(r))
		if len(out) == limit {
			break
		}
	}
	p.logger.Debug("Places search completed",
		zap.String("phrase", phrase),
		zap.Int("results", len(resp.Results)),
		zap.Int("kept", len(out)),
	)
	return out, nil
}

func isClosedForGood(status string) bool {
	return status == "CLOSED_PERMANENTLY"
}

func toPlace(r *maps.PlacesSearchResult) place.Place {
	pl := place.Place{
		ID:          r.PlaceID,
		Name:        r.Name,
		Address:     r.FormattedAddress,
		Location:    geo.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Types:       r.Types,
		Rating:      float64(r.Rating),
		ReviewCount: r.UserRatingsTotal,
		Status:      r.BusinessStatus,
	}
	pl.HasLocation = pl.Location != (geo.Point{})
	if pl.Address == "" {
		pl.Address = r.Vicinity
	}
	if r.OpeningHours != nil && r.OpeningHours.OpenNow != nil {
		open := *r.OpeningHours.OpenNow
		pl.OpenNow = &open
	}
	return pl
}
