package domain

import (
	"context"

	"github.com/kailas-cloud/specdex/internal/domain/span"
)

// Recognizer extracts labeled entities from conversational search text.
type Recognizer interface {
	Recognize(ctx context.Context, text string) (Recognition, error)
}

// Extractor extracts labeled fields with confidence from spec sheet text.
type Extractor interface {
	Extract(ctx context.Context, text string) (Recognition, error)
}

// HealthChecker verifies recognizer provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Recognition carries recognized spans and token usage through the decorator chain.
type Recognition struct {
	Spans        []span.Span
	PromptTokens int
	TotalTokens  int
}
