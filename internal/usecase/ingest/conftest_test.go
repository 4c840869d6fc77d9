package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/specdex/internal/domain"
	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/span"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// mockExtractor returns spans keyed by document text.
type mockExtractor struct {
	byText map[string][]span.Span
	err    error
}

func (m *mockExtractor) Extract(_ context.Context, text string) (domain.Recognition, error) {
	if m.err != nil {
		return domain.Recognition{}, m.err
	}
	spans, ok := m.byText[text]
	if !ok {
		return domain.Recognition{}, fmt.Errorf("no fixture for %q: %w", text, domain.ErrRecognizerFailed)
	}
	return domain.Recognition{Spans: spans}, nil
}

// memRepo is a concurrency-safe in-memory catalog.
type memRepo struct {
	mu      sync.Mutex
	records map[string]record.Record
	upserts int
	err     error
}

func newMemRepo() *memRepo {
	return &memRepo{records: map[string]record.Record{}}
}

func (m *memRepo) Upsert(_ context.Context, rec record.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, exists := m.records[rec.Identity()]
	m.records[rec.Identity()] = rec
	m.upserts++
	return !exists, nil
}

func (m *memRepo) Exists(_ context.Context, identity string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[identity]
	return ok, nil
}

func (m *memRepo) Delete(_ context.Context, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.records[identity]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(m.records, identity)
	return nil
}

func (m *memRepo) get(identity string) (record.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[identity]
	return r, ok
}

// memReader serves sources from a map of path to text.
type memReader struct {
	mu      sync.Mutex
	files   map[string]string
	order   []string
	reads   int
	listErr error
}

func (m *memReader) List(_ context.Context, _ string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.order, nil
}

func (m *memReader) Read(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	text, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("open %s: no such file", path)
	}
	return text, nil
}

type memRuns struct {
	saved []dombatch.Report
}

func (m *memRuns) Save(_ context.Context, r dombatch.Report) error {
	m.saved = append(m.saved, r)
	return nil
}

// hpSpans is a realistic extraction for an HP spec sheet.
var hpSpans = []span.Span{
	{Category: "Marca", Text: "hp", Offset: -1, Confidence: 0.99},
	{Category: "Modelo", Text: "Pavilion 15-eh1000", Offset: -1, Confidence: 0.95},
	{Category: "Procesador", Text: "AMD Ryzen 7-5700U", Offset: -1, Confidence: 0.9},
	{Category: "RAM", Text: "16 GB", Offset: -1, Confidence: 0.92},
	{Category: "Almacenamiento", Text: "512GB SSD", Offset: -1, Confidence: 0.9},
	{Category: "Pulgadas", Text: "15,6\"", Offset: -1, Confidence: 0.88},
	{Category: "Precio", Text: "2.205,78 €", Offset: -1, Confidence: 0.97},
	{Category: "Frecuencia procesador", Text: "4,3 GHz", Offset: -1, Confidence: 0.4},
}

func newTestService(ext Extractor, repo Repository, reader SourceReader) *Service {
	n := 0
	return New(ext, repo, reader).
		WithClock(func() time.Time { return fixedNow }).
		WithRunIDs(func() string { n++; return fmt.Sprintf("run-%d", n) })
}
