package search

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/business"
	"github.com/kailas-cloud/nearby/internal/domain/candidate"
	"github.com/kailas-cloud/nearby/internal/domain/geo"
	"github.com/kailas-cloud/nearby/internal/domain/place"
	"github.com/kailas-cloud/nearby/internal/domain/search/filter"
	"github.com/kailas-cloud/nearby/internal/domain/search/request"
)

// --- Stubs ---

var queryVec = []float32{1, 0}

// stubEmbedder returns queryVec for the query and a per-place vector for
// descriptions, matched by the place name they start with.
type stubEmbedder struct {
	mu      sync.Mutex
	err     error
	places  map[string][]float32
	calls   int
	failFor string
	texts   []string
}

func (e *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.texts = append(e.texts, text)
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	if e.failFor != "" && strings.HasPrefix(text, e.failFor) {
		return domain.EmbeddingResult{}, errTest
	}
	for name, v := range e.places {
		if strings.HasPrefix(text, name) {
			return domain.EmbeddingResult{Embedding: v, TotalTokens: 1}, nil
		}
	}
	return domain.EmbeddingResult{Embedding: queryVec, TotalTokens: 1}, nil
}

type stubCatalog struct {
	results     []candidate.Candidate
	err         error
	details     map[string]business.Details
	detailsErr  error
	searchCalls int
	gotFilters  filter.Expression
	gotIDs      []string
}

func (c *stubCatalog) Search(
	_ context.Context, _ []float32, filters filter.Expression, threshold float64, limit int,
) ([]candidate.Candidate, error) {
	c.searchCalls++
	c.gotFilters = filters
	if c.err != nil {
		return nil, c.err
	}
	var out []candidate.Candidate
	for _, r := range c.results {
		if r.Similarity >= threshold && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *stubCatalog) Details(_ context.Context, ids []string) (map[string]business.Details, error) {
	c.gotIDs = ids
	if c.detailsErr != nil {
		return nil, c.detailsErr
	}
	return c.details, nil
}

type stubPlanner struct {
	phrases []string
	err     error
	gotN    int
	calls   int
}

func (p *stubPlanner) Plan(_ context.Context, _ string, n int) ([]string, error) {
	p.calls++
	p.gotN = n
	if p.err != nil {
		return nil, p.err
	}
	return p.phrases, nil
}

type stubPlaces struct {
	byPhrase map[string][]place.Place
	errFor   map[string]error
	block    map[string]bool
	delay    time.Duration
	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
	gotNear  sync.Map
}

func (p *stubPlaces) FindPlaces(
	ctx context.Context, phrase string, near geo.Point, _ float64, _ int,
) ([]place.Place, error) {
	p.calls.Add(1)
	p.gotNear.Store(phrase, near)
	cur := p.inflight.Add(1)
	defer p.inflight.Add(-1)
	for {
		peak := p.peak.Load()
		if cur <= peak || p.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	if p.block[phrase] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if err := p.errFor[phrase]; err != nil {
		return nil, err
	}
	return p.byPhrase[phrase], nil
}

type stubDistances struct {
	legs  map[geo.Point]geo.Leg
	err   error
	calls int
	dests []geo.Point
}

func (d *stubDistances) Distances(_ context.Context, _ geo.Point, dests []geo.Point) ([]geo.Leg, error) {
	d.calls++
	d.dests = dests
	if d.err != nil {
		return nil, d.err
	}
	out := make([]geo.Leg, len(dests))
	for i, p := range dests {
		out[i] = d.legs[p]
	}
	return out, nil
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")

// --- Helpers ---

func fixedNow() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }

func newRequest(t *testing.T, query string, count int, origin *geo.Point) *request.Request {
	t.Helper()
	p := request.Params{Query: query, Count: &count}
	if origin != nil {
		p.Latitude, p.Longitude = &origin.Lat, &origin.Lng
	}
	r, err := request.New(p)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func catalogHit(id, businessID string, sim float64, loc *geo.Point) candidate.Candidate {
	c := candidate.New(id, candidate.SourceCatalog, businessID)
	c.BusinessID = businessID
	c.Title = id
	c.Similarity = sim
	if loc != nil {
		c.Location = candidate.Location{Lat: loc.Lat, Lng: loc.Lng, HasCoords: true}
	}
	return c
}

func foundDetails(ids ...string) map[string]business.Details {
	out := make(map[string]business.Details, len(ids))
	for _, id := range ids {
		out[id] = business.Details{Found: true, Business: business.Business{ID: id, Name: "Biz " + id}}
	}
	return out
}

func testPlace(id, name string, loc *geo.Point) place.Place {
	p := place.Place{ID: id, Name: name, Types: []string{"cafe"}}
	if loc != nil {
		p.Location, p.HasLocation = *loc, true
	}
	return p
}

func ids(cands []candidate.Candidate) []string {
	out := make([]string, len(cands))
	for i := range cands {
		out[i] = cands[i].ID
	}
	return out
}
