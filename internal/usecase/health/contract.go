package health

import "context"

// DBPinger checks catalog store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// RecognizerChecker checks recognizer provider availability.
type RecognizerChecker interface {
	HealthCheck(ctx context.Context) error
}
