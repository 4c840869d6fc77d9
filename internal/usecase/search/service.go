package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/normalize"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
	"github.com/kailas-cloud/specdex/internal/metrics"
)

// DefaultLimit caps the records returned by one query.
const DefaultLimit = 100

// Outcome is the result of a catalog query together with what produced it.
type Outcome struct {
	Fields    field.Set
	Extras    map[string]string
	Predicate predicate.Predicate
	Records   []record.Record
	Total     int
}

// Service answers catalog queries from free text or structured filters.
type Service struct {
	repo       Repository
	recognizer Recognizer
	selectable []field.Name
	limit      int
	logger     *zap.Logger
}

// New creates a search service selecting on predicate.DefaultSelectable.
func New(repo Repository, recognizer Recognizer) *Service {
	return &Service{
		repo:       repo,
		recognizer: recognizer,
		selectable: predicate.DefaultSelectable,
		limit:      DefaultLimit,
		logger:     zap.NewNop(),
	}
}

// WithSelectable configures the fields free-text queries may constrain.
func (s *Service) WithSelectable(names []field.Name) *Service {
	if len(names) > 0 {
		s.selectable = append([]field.Name(nil), names...)
	}
	return s
}

// WithLimit configures the maximum number of returned records.
func (s *Service) WithLimit(n int) *Service {
	if n > 0 {
		s.limit = n
	}
	return s
}

// WithLogger configures the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Search recognizes entities in text and fetches the matching records.
// A query with no recognized selectable field returns the unfiltered catalog.
func (s *Service) Search(ctx context.Context, text string) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, domain.ErrEmptyQuery
	}

	rec, err := s.recognizer.Recognize(ctx, text)
	if err != nil {
		return Outcome{}, fmt.Errorf("recognize query: %w", err)
	}

	spans := normalize.ConsolidateCategory(rec.Spans, normalize.ScreenInches)
	fields, extras := normalize.Fields(spans)
	p := predicate.Build(fields, s.selectable)

	s.logger.Debug("Query recognized",
		zap.Int("spans", len(rec.Spans)),
		zap.Strings("fields", names(fields.Present())),
		zap.String("predicate", p.String()),
	)

	out, err := s.run(ctx, p, "query")
	if err != nil {
		return Outcome{}, err
	}
	out.Fields = fields
	out.Extras = extras
	return out, nil
}

// Filter fetches records matching structured field values. Every canonical
// field may be constrained; the recognizer is not involved.
func (s *Service) Filter(ctx context.Context, fields field.Set) (Outcome, error) {
	p := predicate.Build(fields, field.All())
	out, err := s.run(ctx, p, "filter")
	if err != nil {
		return Outcome{}, err
	}
	out.Fields = fields
	return out, nil
}

// All returns one page of the unfiltered catalog.
func (s *Service) All(ctx context.Context, offset, limit int) ([]record.Record, int, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	if offset < 0 {
		offset = 0
	}
	recs, total, err := s.repo.Find(ctx, predicate.Predicate{}, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	return recs, total, nil
}

// Get returns one record by identity key.
func (s *Service) Get(ctx context.Context, identity string) (record.Record, error) {
	if strings.TrimSpace(identity) == "" {
		return record.Record{}, fmt.Errorf("identity: %w", domain.ErrInvalidInput)
	}
	rec, err := s.repo.Get(ctx, identity)
	if err != nil {
		return record.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (s *Service) run(ctx context.Context, p predicate.Predicate, origin string) (Outcome, error) {
	metrics.PredicateConstraints.WithLabelValues(origin).Observe(float64(p.Len()))

	recs, total, err := s.repo.Find(ctx, p, 0, s.limit)
	if err != nil {
		return Outcome{}, fmt.Errorf("find records: %w", err)
	}
	return Outcome{Predicate: p, Records: recs, Total: total}, nil
}

func names(ns []field.Name) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = string(n)
	}
	return out
}
