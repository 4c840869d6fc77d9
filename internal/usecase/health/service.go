package health

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 3 * time.Second

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means search and ingestion are down but stored records are served.
	Degraded Status = "degraded"
	// Unhealthy means the catalog store is unreachable.
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
	ComponentDatabase   = "database"
	ComponentRecognizer = "recognizer"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db         DBPinger
	recognizer RecognizerChecker
	timeout    time.Duration
}

// New creates a Service. recognizer can be nil.
func New(db DBPinger, recognizer RecognizerChecker) *Service {
	return &Service{db: db, recognizer: recognizer, timeout: DefaultTimeout}
}

// WithTimeout configures the per-component check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs the component checks in parallel.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			res := CheckOK
			if err := fn(cctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}

	run(ComponentDatabase, s.db.Ping)
	if s.recognizer != nil {
		run(ComponentRecognizer, s.recognizer.HealthCheck)
	}
	wg.Wait()

	status := Healthy
	switch {
	case checks[ComponentDatabase] == CheckError:
		status = Unhealthy
	case checks[ComponentRecognizer] == CheckError:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
