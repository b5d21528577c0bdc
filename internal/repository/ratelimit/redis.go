// Package ratelimit persists admitted requests for sliding-window rate limiting.
package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/ratelimit"
)

var keyPrefix = domain.KeyPrefix + "ratelimit:"

// zsetStore is the consumer interface for the Redis-backed log (ISP).
type zsetStore interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZCount(ctx context.Context, key string, minScore, maxScore float64) (int64, error)
	ZRemRangeByScore(ctx context.Context, key string, minScore, maxScore float64) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// RedisStore keeps one sorted set per key, scored by admission time in unix milliseconds.
// Entries older than the window are trimmed on every count, and the key expires after
// one idle window.
type RedisStore struct {
	store  zsetStore
	window time.Duration
}

// NewRedisStore creates a Redis-backed rate-limit log.
func NewRedisStore(s zsetStore, window time.Duration) *RedisStore {
	return &RedisStore{store: s, window: window}
}

// Count returns the number of records for key at or after since.
func (r *RedisStore) Count(ctx context.Context, key ratelimit.Key, since time.Time) (int, error) {
	k := keyPrefix + key.String()
	cutoff := float64(since.UnixMilli())

	if err := r.store.ZRemRangeByScore(ctx, k, math.Inf(-1), math.Nextafter(cutoff, math.Inf(-1))); err != nil {
		return 0, fmt.Errorf("trim rate-limit log: %w", err)
	}
	n, err := r.store.ZCount(ctx, k, cutoff, math.Inf(1))
	if err != nil {
		return 0, fmt.Errorf("count rate-limit log: %w", err)
	}
	return int(n), nil
}

// Record appends rec to the log for its key.
func (r *RedisStore) Record(ctx context.Context, rec ratelimit.Record) error {
	k := keyPrefix + rec.Key.String()

	member := uuid.NewString()
	if len(rec.Metadata) > 0 {
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("encode rate-limit metadata: %w", err)
		}
		member += "|" + string(meta)
	}

	if err := r.store.ZAdd(ctx, k, float64(rec.Timestamp.UnixMilli()), member); err != nil {
		return fmt.Errorf("record rate-limit entry: %w", err)
	}
	if err := r.store.Expire(ctx, k, r.window); err != nil {
		return fmt.Errorf("expire rate-limit log: %w", err)
	}
	return nil
}
