package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/specdex/internal/domain"
	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/normalize"
	"github.com/kailas-cloud/specdex/internal/domain/span"
	"github.com/kailas-cloud/specdex/internal/metrics"
)

// DefaultWorkers is the number of documents processed in parallel.
const DefaultWorkers = 4

// Source is one document ready for extraction.
type Source struct {
	Path string
	Text string
}

// Service turns spec sheets into catalog records.
type Service struct {
	extractor     Extractor
	repo          Repository
	reader        SourceReader
	runs          RunStore
	workers       int
	minConfidence float64
	skipExisting  bool
	now           func() time.Time
	newRunID      func() string
	logger        *zap.Logger
}

// New creates an ingest service.
func New(extractor Extractor, repo Repository, reader SourceReader) *Service {
	return &Service{
		extractor: extractor,
		repo:      repo,
		reader:    reader,
		workers:   DefaultWorkers,
		now:       time.Now,
		newRunID:  uuid.NewString,
		logger:    zap.NewNop(),
	}
}

// WithWorkers configures the parallelism of directory runs.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithMinConfidence drops extracted spans scoring below threshold.
func (s *Service) WithMinConfidence(threshold float64) *Service {
	s.minConfidence = threshold
	return s
}

// WithSkipExisting leaves already stored records untouched.
func (s *Service) WithSkipExisting(skip bool) *Service {
	s.skipExisting = skip
	return s
}

// WithRunStore persists directory run reports.
func (s *Service) WithRunStore(runs RunStore) *Service {
	s.runs = runs
	return s
}

// WithClock configures the ingestion timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithRunIDs configures the run id generator.
func (s *Service) WithRunIDs(gen func() string) *Service {
	if gen != nil {
		s.newRunID = gen
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

// IngestDocument extracts, normalizes and stores one document.
// The record identity is the source file name.
func (s *Service) IngestDocument(ctx context.Context, src Source) dombatch.Result {
	identity := record.IdentityFromPath(src.Path)
	if identity == "" {
		return s.finish(dombatch.NewError("", src.Path, fmt.Errorf("source path: %w", domain.ErrInvalidInput)))
	}
	if res, skip := s.checkExisting(ctx, identity, src.Path); skip {
		return res
	}
	return s.extractAndStore(ctx, identity, src)
}

// IngestFile reads one source file and ingests it.
func (s *Service) IngestFile(ctx context.Context, path string) dombatch.Result {
	identity := record.IdentityFromPath(path)
	if identity == "" {
		return s.finish(dombatch.NewError("", path, fmt.Errorf("source path: %w", domain.ErrInvalidInput)))
	}
	if res, skip := s.checkExisting(ctx, identity, path); skip {
		return res
	}

	text, err := s.reader.Read(ctx, path)
	if err != nil {
		return s.finish(dombatch.NewError(identity, path, domain.NewSourceError(path, err)))
	}
	return s.extractAndStore(ctx, identity, Source{Path: path, Text: text})
}

// IngestSpans stores a record from spans extracted upstream. The confidence
// threshold applies; skip-existing does not.
func (s *Service) IngestSpans(ctx context.Context, identity string, spans []span.Span) dombatch.Result {
	if identity == "" {
		return s.finish(dombatch.NewError("", "", fmt.Errorf("identity: %w", domain.ErrInvalidInput)))
	}
	return s.store(ctx, identity, identity, span.FilterConfidence(spans, s.minConfidence))
}

// Delete removes a stored record. Missing records return domain.ErrRecordNotFound.
func (s *Service) Delete(ctx context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("identity: %w", domain.ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, identity); err != nil {
		return fmt.Errorf("delete %s: %w", identity, err)
	}
	s.logger.Info("Record deleted", zap.String("identity", identity))
	return nil
}

// IngestDirectory ingests every source under dir with bounded parallelism.
// Results keep the listing order. Per-document failures are reported in the
// result set; only listing failures return an error.
func (s *Service) IngestDirectory(ctx context.Context, dir string) (dombatch.Report, error) {
	report := dombatch.Report{
		RunID:     s.newRunID(),
		Directory: dir,
		StartedAt: s.now(),
	}
	logger := s.logger.With(zap.String("run_id", report.RunID), zap.String("dir", dir))

	paths, err := s.reader.List(ctx, dir)
	if err != nil {
		return report, fmt.Errorf("list sources: %w", err)
	}
	logger.Info("Ingestion run started", zap.Int("sources", len(paths)), zap.Int("workers", s.workers))

	results := make([]dombatch.Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = dombatch.NewError(record.IdentityFromPath(path), path, err)
				return nil
			}
			results[i] = s.IngestFile(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	report.Results = results
	report.FinishedAt = s.now()
	metrics.IngestRunDuration.Observe(report.Duration().Seconds())

	logger.Info("Ingestion run finished",
		zap.Int("created", report.Count(dombatch.StatusCreated)),
		zap.Int("updated", report.Count(dombatch.StatusUpdated)),
		zap.Int("skipped", report.Count(dombatch.StatusSkipped)),
		zap.Int("failed", report.Count(dombatch.StatusError)),
		zap.Duration("duration", report.Duration()),
	)

	if s.runs != nil {
		if err := s.runs.Save(ctx, report); err != nil {
			logger.Warn("Failed to save run report", zap.Error(err))
		}
	}
	return report, nil
}

func (s *Service) checkExisting(ctx context.Context, identity, path string) (dombatch.Result, bool) {
	if !s.skipExisting {
		return dombatch.Result{}, false
	}
	exists, err := s.repo.Exists(ctx, identity)
	if err != nil {
		return s.finish(dombatch.NewError(identity, path, fmt.Errorf("check existing: %w", err))), true
	}
	if exists {
		return s.finish(dombatch.NewSkipped(identity, path)), true
	}
	return dombatch.Result{}, false
}

func (s *Service) extractAndStore(ctx context.Context, identity string, src Source) dombatch.Result {
	rec, err := s.extractor.Extract(ctx, src.Text)
	if err != nil {
		return s.finish(dombatch.NewError(identity, src.Path, fmt.Errorf("extract: %w", err)))
	}
	spans := span.FilterConfidence(rec.Spans, s.minConfidence)
	if dropped := len(rec.Spans) - len(spans); dropped > 0 {
		s.logger.Debug("Low confidence spans dropped",
			zap.String("identity", identity),
			zap.Int("dropped", dropped),
			zap.Float64("min_confidence", s.minConfidence),
		)
	}
	return s.store(ctx, identity, src.Path, spans)
}

func (s *Service) store(ctx context.Context, identity, path string, spans []span.Span) dombatch.Result {
	spans = normalize.ConsolidateCategory(spans, normalize.ScreenInches)
	fields, extras := normalize.Fields(spans)
	if fields.IsEmpty() {
		s.logger.Warn("No catalog fields recognized", zap.String("identity", identity), zap.String("source", path))
	}

	rec := record.Assemble(identity, fields, s.now().UTC()).WithExtras(extras)
	created, err := s.repo.Upsert(ctx, rec)
	if err != nil {
		return s.finish(dombatch.NewError(identity, path, fmt.Errorf("store record: %w", err)))
	}
	return s.finish(dombatch.NewStored(identity, path, created, len(fields.Present())))
}

// finish logs the outcome and counts it.
func (s *Service) finish(res dombatch.Result) dombatch.Result {
	metrics.IngestDocumentsTotal.WithLabelValues(string(res.Status())).Inc()
	if res.Err() != nil {
		s.logger.Error("Document ingestion failed",
			zap.String("identity", res.ID()),
			zap.String("source", res.Source()),
			zap.Error(res.Err()),
		)
		return res
	}
	s.logger.Info("Document ingested",
		zap.String("identity", res.ID()),
		zap.String("source", res.Source()),
		zap.String("status", string(res.Status())),
		zap.Int("fields", res.Fields()),
	)
	return res
}
