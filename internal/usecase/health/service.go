package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a non-critical component failed.
	Degraded Status = "degraded"
	// Unhealthy indicates a critical component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	components []Component
	timeout    time.Duration
}

// New creates a Service. Components with a nil Check are skipped.
func New(timeout time.Duration, components ...Component) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	kept := make([]Component, 0, len(components))
	for _, c := range components {
		if c.Check != nil {
			kept = append(kept, c)
		}
	}
	return &Service{components: kept, timeout: timeout}
}

// Check runs all component checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.components))

	var g errgroup.Group
	for i, c := range s.components {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = CheckOK
			if err := c.Check(cctx); err != nil {
				results[i] = CheckError
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.components))}
	for i, c := range s.components {
		report.Checks[c.Name] = results[i]
		if results[i] != CheckError {
			continue
		}
		if c.Critical {
			report.Status = Unhealthy
		} else if report.Status == Healthy {
			report.Status = Degraded
		}
	}
	return report
}
