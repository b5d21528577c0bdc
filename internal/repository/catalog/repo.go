package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/nearby/internal/db"
	"github.com/kailas-cloud/nearby/internal/domain/business"
	"github.com/kailas-cloud/nearby/internal/domain/candidate"
	"github.com/kailas-cloud/nearby/internal/domain/search/filter"
)

// store is the consumer interface for catalog operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo reads and writes the business catalog stored as hashes behind an FT index.
type Repo struct {
	store     store
	vectorDim int
}

// New creates a catalog repository. vectorDim must match the embedding model.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// Search returns catalog candidates with similarity >= threshold, best first, at most limit.
func (r *Repo) Search(
	ctx context.Context, vector []float32, filters filter.Expression, threshold float64, limit int,
) ([]candidate.Candidate, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: indexName,
		Filters:   filters,
		Vector:    vector,
		K:         limit,
		ReturnFields: []string{
			fieldBusinessID, fieldPlaceID, fieldTitle, fieldDescription, fieldCategory,
			fieldTags, fieldLat, fieldLng, fieldAddress, vectorScoreField,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	if sr == nil {
		return nil, nil
	}

	out := make([]candidate.Candidate, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		if e.Score < threshold {
			continue
		}
		id := strings.TrimPrefix(e.Key, offeringPrefix)
		out = append(out, entryToCandidate(id, e.Score, e.Fields))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Details fetches business details for the given ids in one round-trip.
// Unknown ids are present in the result with Found=false.
func (r *Repo) Details(ctx context.Context, businessIDs []string) (map[string]business.Details, error) {
	ids := uniqueNonEmpty(businessIDs)
	if len(ids) == 0 {
		return map[string]business.Details{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = businessKey(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load business details: %w", err)
	}

	out := make(map[string]business.Details, len(ids))
	for i, id := range ids {
		var m map[string]string
		if i < len(hashes) {
			m = hashes[i]
		}
		out[id] = hashToDetails(id, m)
	}
	return out, nil
}

// PutBusinesses writes business detail records.
func (r *Repo) PutBusinesses(ctx context.Context, businesses []business.Business) error {
	items := make([]db.HashSetItem, 0, len(businesses))
	for i := range businesses {
		b := &businesses[i]
		if b.ID == "" {
			return errors.New("business id is required")
		}
		fields, err := businessToHash(b)
		if err != nil {
			return fmt.Errorf("encode business %s: %w", b.ID, err)
		}
		items = append(items, db.HashSetItem{Key: businessKey(b.ID), Fields: fields})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put businesses: %w", err)
	}
	return nil
}

// PutOfferings writes searchable offerings. Every offering needs a vector of the index dimension.
func (r *Repo) PutOfferings(ctx context.Context, offerings []Offering) error {
	items := make([]db.HashSetItem, 0, len(offerings))
	for i := range offerings {
		o := &offerings[i]
		if o.ID == "" || o.BusinessID == "" {
			return fmt.Errorf("offering %d: id and business id are required", i)
		}
		if len(o.Vector) != r.vectorDim {
			return fmt.Errorf("offering %s: vector dim %d, want %d", o.ID, len(o.Vector), r.vectorDim)
		}
		items = append(items, db.HashSetItem{Key: offeringKey(o.ID), Fields: offeringToHash(o)})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put offerings: %w", err)
	}
	return nil
}

// EnsureIndex creates the catalog index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check catalog index: %w", err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, buildIndex(r.vectorDim)); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create catalog index: %w", err)
	}
	return nil
}

func buildIndex(vectorDim int) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{offeringPrefix},
		Fields: []db.IndexField{
			{Name: fieldBusinessID, Type: db.IndexFieldTag},
			{Name: fieldCategory, Type: db.IndexFieldTag},
			{Name: fieldTags, Type: db.IndexFieldTag, TagSeparator: tagSeparator},
			{Name: fieldLat, Type: db.IndexFieldNumeric},
			{Name: fieldLng, Type: db.IndexFieldNumeric},
			{Name: fieldLocated, Type: db.IndexFieldTag},
			{
				Name:           vectorField,
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDim:      vectorDim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
