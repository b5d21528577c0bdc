package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/nearby/internal/domain/ratelimit"
)

// MemoryStore is a process-local log for single-instance deployments and tests.
// Keys idle for a full window are evicted, and at most maxKeys callers are tracked.
type MemoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, []time.Time]
}

// NewMemoryStore creates an in-memory rate-limit log.
func NewMemoryStore(maxKeys int, window time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, []time.Time](maxKeys, nil, window)}
}

// Count returns the number of records for key at or after since.
func (m *MemoryStore) Count(_ context.Context, key ratelimit.Key, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key.String()
	ts, ok := m.cache.Peek(k)
	if !ok {
		return 0, nil
	}
	kept := ts[:0:0]
	for _, t := range ts {
		if !t.Before(since) {
			kept = append(kept, t)
		}
	}
	if len(kept) != len(ts) {
		m.cache.Add(k, kept)
	}
	return len(kept), nil
}

// Record appends rec to the log for its key. Metadata is not retained in memory.
func (m *MemoryStore) Record(_ context.Context, rec ratelimit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := rec.Key.String()
	ts, _ := m.cache.Peek(k)
	next := make([]time.Time, len(ts), len(ts)+1)
	copy(next, ts)
	m.cache.Add(k, append(next, rec.Timestamp))
	return nil
}
