package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the usage mirror is unreachable; justification still works.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
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
	Tokens int
}

// Service coordinates health checks.
type Service struct {
	store  StorePinger
	tokens TokenCounter
}

// New creates a Service. store is nil when no usage mirror is configured.
func New(tokens TokenCounter, store StorePinger) *Service {
	return &Service{store: store, tokens: tokens}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"ledger": CheckOK}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["usage_store"] = CheckError
		} else {
			checks["usage_store"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Tokens: s.tokens.Count()}
}
