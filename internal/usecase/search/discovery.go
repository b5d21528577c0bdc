package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/candidate"
	"github.com/kailas-cloud/nearby/internal/domain/geo"
	"github.com/kailas-cloud/nearby/internal/domain/place"
	"github.com/kailas-cloud/nearby/internal/domain/search/request"
	"github.com/kailas-cloud/nearby/internal/metrics"
)

// phraseCount is how many planner phrases are needed to fill slots: one per two slots.
func phraseCount(slots, maxQueries int) int {
	return min(maxQueries, (slots+1)/2)
}

// discover fills up to slots with places found through planner phrases.
// Every failure is contained: a failed planner yields nothing, a failed branch
// contributes nothing.
func (s *Service) discover(
	ctx context.Context, req *request.Request, queryVec []float32, slots int, log *zap.Logger,
) []candidate.Candidate {
	start := time.Now()
	defer metrics.ObserveStage("discovery", start)

	n := phraseCount(slots, s.tuning.MaxQueries)
	phrases, err := s.planner.Plan(ctx, req.Query(), n)
	if err != nil {
		log.Warn("Query planner failed, skipping discovery",
			zap.Error(fmt.Errorf("%w: %w", domain.ErrDiscoveryBranch, err)))
		metrics.SearchDegradedTotal.WithLabelValues("planner").Inc()
		return nil
	}
	if len(phrases) > n {
		phrases = phrases[:n]
	}

	near := s.tuning.DefaultLocation
	if origin := req.Origin(); origin != nil {
		near = *origin
	}

	// Each branch writes only its own slot.
	branches := make([][]candidate.Candidate, len(phrases))
	var g errgroup.Group
	g.SetLimit(s.tuning.MaxQueries)
	for i, phrase := range phrases {
		g.Go(func() error {
			branches[i] = s.branch(ctx, phrase, req.Query(), near, queryVec, log)
			return nil
		})
	}
	_ = g.Wait()

	return collapseDiscovered(branches, slots)
}

// branch searches one phrase, embeds the place descriptions as documents and
// scores them against the query vector.
func (s *Service) branch(
	ctx context.Context, phrase, query string, near geo.Point, queryVec []float32, log *zap.Logger,
) (out []candidate.Candidate) {
	ctx, cancel := context.WithTimeout(ctx, s.tuning.BranchTimeout)
	defer cancel()

	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			log.Error("Discovery branch panicked", zap.String("phrase", phrase), zap.Any("panic", r))
			outcome = "error"
			out = nil
		}
		metrics.DiscoveryBranchesTotal.WithLabelValues(outcome).Inc()
	}()

	fail := func(step string, err error) []candidate.Candidate {
		outcome = branchOutcome(ctx, err)
		log.Warn("Discovery branch failed",
			zap.String("phrase", phrase),
			zap.String("step", step),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrDiscoveryBranch, err)),
		)
		return nil
	}

	places, err := s.places.FindPlaces(ctx, phrase, near, s.tuning.DiscoveryRadiusMiles, s.tuning.PlacesPerPhrase)
	if err != nil {
		return fail("places", err)
	}
	if len(places) > s.tuning.PlacesPerPhrase {
		places = places[:s.tuning.PlacesPerPhrase]
	}
	if len(places) == 0 {
		return nil
	}

	texts := make([]string, len(places))
	for i := range places {
		texts[i] = places[i].Description(phrase, query)
	}
	emb, err := domain.EmbedAll(ctx, s.docEmbed, texts)
	if err != nil {
		return fail("embed", err)
	}

	out = make([]candidate.Candidate, 0, len(places))
	for i := range places {
		sim := domain.CosineSimilarity(queryVec, emb.Embeddings[i])
		if sim < s.tuning.MinDiscoveredSimilarity {
			continue
		}
		out = append(out, discoveredCandidate(&places[i], phrase, texts[i], sim))
	}
	return out
}

func branchOutcome(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return "timeout"
	}
	return "error"
}

func discoveredCandidate(p *place.Place, phrase, description string, similarity float64) candidate.Candidate {
	c := candidate.New(candidate.DiscoveredIDPrefix+p.ID, candidate.SourceDiscovered, p.ID)
	c.PlaceID = p.ID
	c.Title = p.Name
	c.BusinessName = p.Name
	c.Description = description
	if len(p.Types) > 0 {
		c.Category = strings.ReplaceAll(p.Types[0], "_", " ")
	}
	c.Tags = p.Types
	c.Location = candidate.Location{
		Address:   p.Address,
		Lat:       p.Location.Lat,
		Lng:       p.Location.Lng,
		HasCoords: p.HasLocation,
	}
	c.Similarity = similarity
	c.IsOpen = p.IsOpen()
	c.Rating = p.Rating
	c.ReviewCount = p.ReviewCount
	c.OriginPhrase = phrase
	return c
}

// collapseDiscovered flattens branch results, keeps the most similar entry per
// place, orders by similarity (stable) and truncates to slots.
func collapseDiscovered(branches [][]candidate.Candidate, slots int) []candidate.Candidate {
	best := make(map[string]int)
	var out []candidate.Candidate
	for _, b := range branches {
		for i := range b {
			c := b[i]
			if j, ok := best[c.PlaceID]; ok {
				if c.Similarity > out[j].Similarity {
					out[j] = c
				}
				continue
			}
			best[c.PlaceID] = len(out)
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > slots {
		out = out[:slots]
	}
	return out
}
