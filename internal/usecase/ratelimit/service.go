package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"

	domrl "github.com/kailas-cloud/nearby/internal/domain/ratelimit"
	"github.com/kailas-cloud/nearby/internal/logger"
	"github.com/kailas-cloud/nearby/internal/metrics"
)

// Service applies sliding-window limits per caller and function.
// The count and the record are separate store calls, so two concurrent
// requests at the boundary may both be admitted.
type Service struct {
	store Store
	rules map[string]domrl.Rule
	now   func() time.Time
}

// New creates a rate limiter with one rule per function name.
func New(store Store, rules map[string]domrl.Rule) *Service {
	return &Service{store: store, rules: rules, now: time.Now}
}

// WithClock overrides the clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Rule returns the rule configured for function.
func (s *Service) Rule(function string) (domrl.Rule, bool) {
	r, ok := s.rules[function]
	return r, ok && r.Max > 0 && r.Window > 0
}

// Check counts the caller's requests inside the window and records this one when admitted.
// Store failures admit the request.
func (s *Service) Check(ctx context.Context, key domrl.Key, metadata map[string]string) domrl.Decision {
	rule, ok := s.Rule(key.Function)
	if !ok {
		return domrl.Decision{Allowed: true}
	}

	log := logger.FromContext(ctx)
	now := s.now()
	dec := domrl.Decision{
		Limit:   rule.Max,
		ResetAt: now.Add(rule.Window),
	}

	count, err := s.store.Count(ctx, key, now.Add(-rule.Window))
	if err != nil {
		log.Warn("Rate limit store unavailable, admitting request",
			zap.String("key", key.String()), zap.Error(err))
		return s.failOpen(key, dec, rule)
	}

	if count >= rule.Max {
		dec.Remaining = 0
		dec.RetryAfter = rule.Window
		metrics.RateLimitDecisionsTotal.WithLabelValues(key.Function, "rejected").Inc()
		log.Info("Rate limit exceeded",
			zap.String("key", key.String()),
			zap.Int("count", count),
			zap.Int("max", rule.Max),
		)
		return dec
	}

	err = s.store.Record(ctx, domrl.Record{Key: key, Timestamp: now, Metadata: metadata})
	if err != nil {
		log.Warn("Rate limit record failed, admitting request",
			zap.String("key", key.String()), zap.Error(err))
		return s.failOpen(key, dec, rule)
	}

	dec.Allowed = true
	dec.Remaining = max(0, rule.Max-count-1)
	metrics.RateLimitDecisionsTotal.WithLabelValues(key.Function, "allowed").Inc()
	return dec
}

func (s *Service) failOpen(key domrl.Key, dec domrl.Decision, rule domrl.Rule) domrl.Decision {
	dec.Allowed = true
	dec.FailedOpen = true
	dec.Remaining = rule.Max
	metrics.RateLimitDecisionsTotal.WithLabelValues(key.Function, "failed_open").Inc()
	return dec
}
