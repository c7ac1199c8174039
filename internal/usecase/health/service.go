package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
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

// Component names reported in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentStore     = "store"
	ComponentEmbedding = "embedding"
	ComponentInference = "inference"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	store     DBPinger
	embedding ProviderChecker
	inference ProviderChecker
}

// New creates a Service around the Redis connection.
func New(db DBPinger) *Service {
	return &Service{db: db}
}

// WithStore adds a separate structured store (SQLite) check.
func (s *Service) WithStore(p DBPinger) *Service {
	s.store = p
	return s
}

// WithEmbedding adds the embedding provider check.
func (s *Service) WithEmbedding(c ProviderChecker) *Service {
	s.embedding = c
	return s
}

// WithInference adds the inference provider check. Leave unset when the model path is disabled.
func (s *Service) WithInference(c ProviderChecker) *Service {
	s.inference = c
	return s
}

// Check runs health checks against all components.
// The inference provider is optional: the classifier falls back to rules without it.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		ComponentDatabase: result(s.db.Ping(ctx)),
	}
	if s.store != nil {
		checks[ComponentStore] = result(s.store.Ping(ctx))
	}
	if s.embedding != nil {
		checks[ComponentEmbedding] = result(s.embedding.HealthCheck(ctx))
	}
	if s.inference != nil {
		checks[ComponentInference] = result(s.inference.HealthCheck(ctx))
	}

	status := Healthy
	for name, v := range checks {
		if v != CheckError {
			continue
		}
		if name == ComponentDatabase || name == ComponentStore {
			status = Unhealthy
			break
		}
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
