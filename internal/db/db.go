package db

import (
	"context"
	"time"
)

// Store is the database facade the composition root wires. Consumers take the narrow
// sub-interfaces below.
type Store interface {
	Pinger
	HashStore
	KVStore
	SortedSetStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash operations. Catalog offerings and business details live in hashes.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// SortedSetStore provides the score-ordered log used for sliding windows.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZCount(ctx context.Context, key string, minScore, maxScore float64) (int64, error)
	ZRemRangeByScore(ctx context.Context, key string, minScore, maxScore float64) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides vector search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
