// Package health aggregates component checks.
package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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

type component struct {
	name  string
	check func(ctx context.Context) error
}

// Service coordinates health checks.
type Service struct {
	components []component
	timeout    time.Duration
}

// New creates a Service checking the cache and vector stores. Either may be nil.
func New(cache, vectors Pinger) *Service {
	s := &Service{timeout: DefaultTimeout}
	if cache != nil {
		s.components = append(s.components, component{"cache", cache.Ping})
	}
	if vectors != nil {
		s.components = append(s.components, component{"vector_store", vectors.Ping})
	}
	return s
}

// WithEmbedding adds the embedding provider check.
func (s *Service) WithEmbedding(c ProviderChecker) *Service {
	if c != nil {
		s.components = append(s.components, component{"embedding", c.HealthCheck})
	}
	return s
}

// WithGeneration adds the generation provider check.
func (s *Service) WithGeneration(c ProviderChecker) *Service {
	if c != nil {
		s.components = append(s.components, component{"generation", c.HealthCheck})
	}
	return s
}

// Check runs health checks against all components. Every component failing is
// Unhealthy, some failing is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	failed := 0

	for _, c := range s.components {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := c.check(cctx)
		cancel()
		if err != nil {
			checks[c.name] = CheckError
			failed++
		} else {
			checks[c.name] = CheckOK
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(s.components):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
