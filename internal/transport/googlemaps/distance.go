package googlemaps

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/kailas-cloud/nearby/internal/domain/geo"
	"github.com/kailas-cloud/nearby/internal/metrics"
)

// MaxDestinations is the Distance Matrix limit on destinations per request.
const MaxDestinations = 25

// Distances resolves driving distance and time with the Distance Matrix API.
type Distances struct {
	client *maps.Client
	logger *zap.Logger
}

// NewDistances creates a geo-distance client.
func NewDistances(cfg *Config) (*Distances, error) {
	c, err := newMapsClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Distances{client: c, logger: loggerOrNop(cfg.Logger)}, nil
}

// Distances returns one leg per destination, in order. Destinations the API cannot route
// come back with Known=false. Requests are split into chunks of MaxDestinations.
func (d *Distances) Distances(ctx context.Context, origin geo.Point, dests []geo.Point) ([]geo.Leg, error) {
	legs := make([]geo.Leg, len(dests))
	for lo := 0; lo < len(dests); lo += MaxDestinations {
		hi := min(lo+MaxDestinations, len(dests))
		if err := d.fetch(ctx, origin, dests[lo:hi], legs[lo:hi]); err != nil {
			return nil, err
		}
	}
	return legs, nil
}

func (d *Distances) fetch(ctx context.Context, origin geo.Point, dests []geo.Point, out []geo.Leg) error {
	req := &maps.DistanceMatrixRequest{
		Origins:      []string{origin.String()},
		Destinations: make([]string, len(dests)),
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsImperial,
	}
	for i, p := range dests {
		req.Destinations[i] = p.String()
	}

	start := time.Now()
	resp, err := d.client.DistanceMatrix(ctx, req)
	metrics.ObserveExternal("distance", start, err)
	if err != nil {
		return fmt.Errorf("distance matrix: %w", err)
	}
	if len(resp.Rows) == 0 {
		return fmt.Errorf("distance matrix returned no rows")
	}

	elems := resp.Rows[0].Elements
	for i := range out {
		if i >= len(elems) || elems[i] == nil || elems[i].Status != "OK" {
			continue
		}
		out[i] = geo.Leg{
			Miles:   float64(elems[i].Distance.Meters) / geo.MetersPerMile,
			Minutes: elems[i].Duration.Minutes(),
			Known:   true,
		}
	}
	d.logger.Debug("Distance matrix completed", zap.Int("destinations", len(dests)))
	return nil
}
