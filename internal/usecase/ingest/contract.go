package ingest

import (
	"context"

	"github.com/kailas-cloud/specdex/internal/domain"
	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
)

// Extractor extracts labeled spec sheet fields from document text.
type Extractor interface {
	Extract(ctx context.Context, text string) (domain.Recognition, error)
}

// Repository stores catalog records.
type Repository interface {
	Upsert(ctx context.Context, rec record.Record) (created bool, err error)
	Exists(ctx context.Context, identity string) (bool, error)
	Delete(ctx context.Context, identity string) error
}

// SourceReader lists and reads source documents.
type SourceReader interface {
	List(ctx context.Context, dir string) ([]string, error)
	Read(ctx context.Context, path string) (string, error)
}

// RunStore keeps directory run reports.
type RunStore interface {
	Save(ctx context.Context, r dombatch.Report) error
}
