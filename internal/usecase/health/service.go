package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the service answers but cannot take new sessions.
	Degraded Status = "degraded"
	// Unhealthy indicates the record store is unreachable.
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

// Report aggregates health check results.
type Report struct {
	Status   Status
	Checks   map[string]CheckResult
	Sessions int
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	sessions SessionCounter
}

// New creates a Service. sessions can be nil.
func New(db DBPinger, sessions SessionCounter) *Service {
	return &Service{db: db, sessions: sessions}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	var mounted int
	if s.sessions != nil {
		mounted = s.sessions.Len()
		limit := s.sessions.Capacity()
		if limit > 0 && mounted >= limit {
			checks["sessions"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["sessions"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks, Sessions: mounted}
}
