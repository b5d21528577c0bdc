package catalog

import (
	"context"
	"testing"

	"github.com/kailas-cloud/nearby/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn    func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	hGetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	hSetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hGetAllMultiFn != nil {
		return m.hGetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hSetMultiFn != nil {
		return m.hSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, 4), ms
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}
