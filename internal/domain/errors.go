package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrValidation signals a malformed search request. No external calls are made.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration signals a missing credential or collaborator.
	ErrConfiguration = errors.New("configuration error")
	// ErrEmbeddingUnavailable signals that the query could not be vectorized. Fatal for a request.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCatalogRetrieval signals a failed catalog similarity search.
	ErrCatalogRetrieval = errors.New("catalog retrieval failed")
	// ErrDiscoveryBranch signals a failed discovery branch (planner, places or embedding).
	ErrDiscoveryBranch = errors.New("discovery branch failed")
	// ErrPlannerOutput signals planner output that is not the expected phrase list.
	ErrPlannerOutput = errors.New("planner output unparsable")
	// ErrEnrichment signals a failed catalog details join.
	ErrEnrichment = errors.New("enrichment failed")
	// ErrGeoDistance signals a failed geo-distance lookup.
	ErrGeoDistance = errors.New("geo distance failed")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// MissingConfigError names the configuration entries a request needed but did not find.
type MissingConfigError struct {
	Missing []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrConfiguration.Error(), strings.Join(e.Missing, ", "))
}

func (e *MissingConfigError) Unwrap() error { return ErrConfiguration }

// NewMissingConfig creates a configuration error listing missing entries.
func NewMissingConfig(missing ...string) error {
	return &MissingConfigError{Missing: missing}
}

// RateLimitError wraps ErrRateLimited with the values needed for 429 headers.
type RateLimitError struct {
	Limit      int
	RetryAfter time.Duration
	ResetAt    time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: limit %d, retry after %s", ErrRateLimited.Error(), e.Limit, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
