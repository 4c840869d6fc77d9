package export

import (
	"context"

	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
)

// Repository pages through catalog records.
type Repository interface {
	Find(ctx context.Context, p predicate.Predicate, offset, limit int) ([]record.Record, int, error)
}
