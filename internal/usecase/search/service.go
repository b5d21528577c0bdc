package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/candidate"
	"github.com/kailas-cloud/nearby/internal/domain/geo"
	"github.com/kailas-cloud/nearby/internal/domain/search/filter"
	"github.com/kailas-cloud/nearby/internal/domain/search/request"
	"github.com/kailas-cloud/nearby/internal/logger"
	"github.com/kailas-cloud/nearby/internal/metrics"
)

// DegradedMessage is returned with an empty result when the pipeline failed unexpectedly.
const DegradedMessage = "search completed with errors, results may be incomplete"

// Result is the ranked answer to one search request.
type Result struct {
	Candidates []candidate.Candidate
	Meta       Meta
}

// Meta describes how the result was assembled.
type Meta struct {
	Query           string
	Threshold       float64
	PlatformCount   int
	DiscoveredCount int
	// Message is set when the result is degraded.
	Message string
}

// Service runs the search pipeline: embed, retrieve, select, discover, merge,
// enrich, filter by radius and rank.
type Service struct {
	embed     Embedder
	docEmbed  Embedder
	catalog   Catalog
	planner   Planner
	places    PlaceFinder
	distances DistanceService
	tuning    Tuning
	now       func() time.Time
	missing   []string
}

// Option configures optional collaborators of the Service.
type Option func(*Service)

// WithDiscovery enables the discovery branch. Both collaborators are required.
func WithDiscovery(p Planner, f PlaceFinder) Option {
	return func(s *Service) {
		s.planner = p
		s.places = f
	}
}

// WithDistances enables distance enrichment for requests with an origin.
func WithDistances(d DistanceService) Option {
	return func(s *Service) { s.distances = d }
}

// WithDocumentEmbedder sets the embedder for discovered place descriptions.
// Catalog offerings are embedded as documents, so asymmetric models need the
// same side here. Defaults to the query embedder.
func WithDocumentEmbedder(e Embedder) Option {
	return func(s *Service) { s.docEmbed = e }
}

// WithClock overrides the clock used for opening-hours evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a search service. A nil embedder or catalog is reported as a
// configuration error on every Search call.
func New(embed Embedder, catalog Catalog, tuning Tuning, opts ...Option) *Service {
	s := &Service{
		embed:   embed,
		catalog: catalog,
		tuning:  tuning.withDefaults(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.docEmbed == nil {
		s.docEmbed = embed
	}
	if embed == nil {
		s.missing = append(s.missing, "embedding provider credential")
	}
	if catalog == nil {
		s.missing = append(s.missing, "catalog store")
	}
	return s
}

// Tuning returns the effective pipeline constants.
func (s *Service) Tuning() Tuning { return s.tuning }

// DiscoveryEnabled reports whether the discovery branch can run.
func (s *Service) DiscoveryEnabled() bool {
	return s.planner != nil && s.places != nil
}

// Search answers a validated request. Only configuration and query embedding
// failures are returned as errors; every later stage degrades instead.
func (s *Service) Search(ctx context.Context, req *request.Request) (res Result, err error) {
	if len(s.missing) > 0 {
		return Result{}, domain.NewMissingConfig(s.missing...)
	}

	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.tuning.RequestTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Search pipeline panicked", zap.Any("panic", r), zap.Stack("stack"))
			metrics.SearchDegradedTotal.WithLabelValues("pipeline").Inc()
			res = degraded(req)
			err = nil
		}
	}()

	start := time.Now()
	emb, err := s.embed.Embed(ctx, req.Query())
	metrics.ObserveStage("embed", start)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	return s.run(ctx, req, emb.Embedding, log), nil
}

func (s *Service) run(ctx context.Context, req *request.Request, vector []float32, log *zap.Logger) Result {
	retrieved := s.retrieve(ctx, req, vector, log)
	selected := selectRelevant(retrieved, req.Threshold(), s.tuning.CatalogSlots)

	var discovered []candidate.Candidate
	slots := max(0, req.Count()-len(selected))
	if slots > 0 && s.DiscoveryEnabled() {
		discovered = s.discover(ctx, req, vector, slots, log)
	}

	merged := merge(selected, discovered)
	s.enrich(ctx, req, merged, log)
	kept := withinRadius(merged, s.tuning.MaxRadiusMiles)
	ranked := rank(kept, &s.tuning, req.Count())

	platform, disc := candidate.CountBySource(ranked)
	metrics.SearchCandidatesTotal.WithLabelValues(string(candidate.SourceCatalog)).Add(float64(platform))
	metrics.SearchCandidatesTotal.WithLabelValues(string(candidate.SourceDiscovered)).Add(float64(disc))

	log.Debug("Search pipeline completed",
		zap.Int("retrieved", len(retrieved)),
		zap.Int("selected", len(selected)),
		zap.Int("discovered", len(discovered)),
		zap.Int("merged", len(merged)),
		zap.Int("returned", len(ranked)),
	)

	return Result{
		Candidates: ranked,
		Meta: Meta{
			Query:           req.Query(),
			Threshold:       req.Threshold(),
			PlatformCount:   platform,
			DiscoveredCount: disc,
		},
	}
}

// retrieve runs the catalog similarity search. Failures yield no catalog candidates.
func (s *Service) retrieve(
	ctx context.Context, req *request.Request, vector []float32, log *zap.Logger,
) []candidate.Candidate {
	start := time.Now()
	defer metrics.ObserveStage("catalog", start)

	var filters filter.Expression
	if origin := req.Origin(); origin != nil {
		filters = filter.Within(geo.BoundingBox(*origin, s.tuning.MaxRadiusMiles))
	}

	cands, err := s.catalog.Search(ctx, vector, filters, s.tuning.CatalogThreshold, s.tuning.CatalogLimit)
	if err != nil {
		log.Warn("Catalog retrieval failed, continuing without catalog results",
			zap.Error(fmt.Errorf("%w: %w", domain.ErrCatalogRetrieval, err)))
		metrics.SearchDegradedTotal.WithLabelValues("catalog").Inc()
		return nil
	}
	return cands
}

func degraded(req *request.Request) Result {
	return Result{
		Candidates: []candidate.Candidate{},
		Meta: Meta{
			Query:     req.Query(),
			Threshold: req.Threshold(),
			Message:   DegradedMessage,
		},
	}
}
