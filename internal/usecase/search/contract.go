package search

import (
	"context"

	"github.com/kailas-cloud/specdex/internal/domain"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
)

// Repository defines the storage contract for catalog queries.
type Repository interface {
	Find(ctx context.Context, p predicate.Predicate, offset, limit int) ([]record.Record, int, error)
	Get(ctx context.Context, identity string) (record.Record, error)
}

// Recognizer extracts labeled entities from conversational text.
type Recognizer interface {
	Recognize(ctx context.Context, text string) (domain.Recognition, error)
}
