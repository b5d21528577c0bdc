// Package googlemaps adapts the Google Maps Places and Distance Matrix APIs
// to the search pipeline's discovery and geo-distance ports.
package googlemaps

import (
	"fmt"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// Config holds the Maps API settings.
type Config struct {
	APIKey string
	// BaseURL overrides the API host. Empty means the public endpoint.
	BaseURL string
	// RequestsPerSecond caps outgoing calls. Zero keeps the library default.
	RequestsPerSecond int
	Logger            *zap.Logger
}

func newMapsClient(cfg *Config) (*maps.Client, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, maps.WithRateLimit(cfg.RequestsPerSecond))
	}
	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return c, nil
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
