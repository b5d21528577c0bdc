package ratelimit

import (
	"context"
	"time"

	domrl "github.com/kailas-cloud/nearby/internal/domain/ratelimit"
)

// Store is the append-only request log the limiter counts over.
type Store interface {
	Count(ctx context.Context, key domrl.Key, since time.Time) (int, error)
	Record(ctx context.Context, rec domrl.Record) error
}
