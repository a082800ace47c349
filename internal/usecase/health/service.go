package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all sources are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual source health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type check struct {
	name   string
	pinger Pinger
}

// Service coordinates health checks across diagnostic sources.
type Service struct {
	checks []check
}

// New creates a Service with no registered sources. A Service without
// sources always reports Healthy.
func New() *Service {
	return &Service{}
}

// Register adds a named source to the check list. Registration order is
// preserved in the report.
func (s *Service) Register(name string, p Pinger) {
	s.checks = append(s.checks, check{name: name, pinger: p})
}

// Check pings every registered source. All sources failing means
// Unhealthy; a partial failure means Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))

	failed := 0
	for _, c := range s.checks {
		if err := c.pinger.Ping(ctx); err != nil {
			checks[c.name] = CheckError
			failed++
		} else {
			checks[c.name] = CheckOK
		}
	}

	status := Healthy
	switch {
	case failed == 0:
	case failed == len(s.checks):
		status = Unhealthy
	default:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
