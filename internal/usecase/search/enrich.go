package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/business"
	"github.com/kailas-cloud/nearby/internal/domain/candidate"
	"github.com/kailas-cloud/nearby/internal/domain/geo"
	"github.com/kailas-cloud/nearby/internal/domain/search/request"
	"github.com/kailas-cloud/nearby/internal/metrics"
)

// enrich joins catalog details and resolves distances in place.
func (s *Service) enrich(ctx context.Context, req *request.Request, cands []candidate.Candidate, log *zap.Logger) {
	start := time.Now()
	defer metrics.ObserveStage("enrich", start)

	s.joinDetails(ctx, cands, log)
	if origin := req.Origin(); origin != nil && s.distances != nil {
		s.resolveDistances(ctx, *origin, cands, log)
	}
}

// joinDetails loads business records for catalog candidates in one call.
// A catalog candidate without a record keeps its offering data and is marked closed.
func (s *Service) joinDetails(ctx context.Context, cands []candidate.Candidate, log *zap.Logger) {
	var ids []string
	for i := range cands {
		if cands[i].IsCatalog() {
			ids = append(ids, cands[i].BusinessID)
		}
	}
	if len(ids) == 0 {
		return
	}

	details, err := s.catalog.Details(ctx, ids)
	if err != nil {
		log.Warn("Catalog details join failed",
			zap.Int("candidates", len(ids)),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrEnrichment, err)))
		metrics.SearchDegradedTotal.WithLabelValues("enrich").Inc()
	}

	now := s.now()
	for i := range cands {
		c := &cands[i]
		if !c.IsCatalog() {
			continue
		}
		d, ok := details[c.BusinessID]
		if !ok || !d.Found {
			c.IsOpen = false
			continue
		}
		applyDetails(c, &d.Business, now)
	}
}

func applyDetails(c *candidate.Candidate, b *business.Business, now time.Time) {
	c.BusinessName = b.Name
	if c.Description == "" {
		c.Description = b.Description
	}
	c.Images = b.Images
	c.Hours = b.Hours
	c.Contact = candidate.Contact{Phone: b.Phone, Website: b.Website, Email: b.Email}
	c.Verified = b.Verified
	c.Rating = b.Rating
	c.ReviewCount = b.ReviewCount
	c.IsOpen = b.IsOpen(now)
}

// resolveDistances makes one distance call for all candidates with coordinates,
// keyed by business key. On failure distances stay Unknown.
func (s *Service) resolveDistances(ctx context.Context, origin geo.Point, cands []candidate.Candidate, log *zap.Logger) {
	var dests []geo.Point
	index := make(map[string]int)
	for i := range cands {
		c := &cands[i]
		if !c.Location.HasCoords {
			continue
		}
		if _, ok := index[c.BusinessKey]; ok {
			continue
		}
		index[c.BusinessKey] = len(dests)
		dests = append(dests, c.Location.Point())
	}
	if len(dests) == 0 {
		return
	}

	legs, err := s.distances.Distances(ctx, origin, dests)
	if err == nil && len(legs) != len(dests) {
		err = fmt.Errorf("got %d legs for %d destinations", len(legs), len(dests))
	}
	if err != nil {
		log.Warn("Distance lookup failed, distances left unknown",
			zap.Int("destinations", len(dests)),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrGeoDistance, err)))
		metrics.SearchDegradedTotal.WithLabelValues("distance").Inc()
		return
	}

	for i := range cands {
		c := &cands[i]
		j, ok := index[c.BusinessKey]
		if !ok || !c.Location.HasCoords || !legs[j].Known {
			continue
		}
		c.DistanceMiles = legs[j].Miles
		if candidate.IsKnown(legs[j].Minutes) {
			c.DurationMinutes = legs[j].Minutes
		}
	}
}
