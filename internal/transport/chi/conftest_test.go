package chi

import (
	"context"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
	exportuc "github.com/kailas-cloud/specdex/internal/usecase/export"
	healthuc "github.com/kailas-cloud/specdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/specdex/internal/usecase/ingest"
	"github.com/kailas-cloud/specdex/internal/usecase/recognition"
	searchuc "github.com/kailas-cloud/specdex/internal/usecase/search"
)

// memCatalog is an in-memory catalog answering equality predicates.
type memCatalog struct {
	mu      sync.Mutex
	records map[string]record.Record
	findErr error
}

func newMemCatalog(recs ...record.Record) *memCatalog {
	c := &memCatalog{records: make(map[string]record.Record)}
	for _, r := range recs {
		c.records[r.Identity()] = r
	}
	return c
}

func (c *memCatalog) Find(_ context.Context, p predicate.Predicate, offset, limit int) ([]record.Record, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, 0, c.findErr
	}
	var hits []record.Record
	for _, r := range c.records {
		if matches(r, p) {
			hits = append(hits, r)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Identity() < hits[j].Identity() })
	total := len(hits)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return hits[offset:end], total, nil
}

func matches(r record.Record, p predicate.Predicate) bool {
	for _, c := range p.Constraints() {
		if r.Fields().Get(c.Field()) != c.Value() {
			return false
		}
	}
	return true
}

func (c *memCatalog) Get(_ context.Context, identity string) (record.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[identity]
	if !ok {
		return record.Record{}, domain.ErrRecordNotFound
	}
	return r, nil
}

func (c *memCatalog) Upsert(_ context.Context, rec record.Record) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.records[rec.Identity()]
	c.records[rec.Identity()] = rec
	return !exists, nil
}

func (c *memCatalog) Exists(_ context.Context, identity string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.records[identity]
	return ok, nil
}

func (c *memCatalog) Delete(_ context.Context, identity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[identity]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(c.records, identity)
	return nil
}

// fakeNLU serves both recognition and extraction.
type fakeNLU struct {
	recognizeFn func(ctx context.Context, text string) (domain.Recognition, error)
	extractFn   func(ctx context.Context, text string) (domain.Recognition, error)
	healthErr   error
}

func (f *fakeNLU) Recognize(ctx context.Context, text string) (domain.Recognition, error) {
	if f.recognizeFn != nil {
		return f.recognizeFn(ctx, text)
	}
	return domain.Recognition{}, nil
}

func (f *fakeNLU) Extract(ctx context.Context, text string) (domain.Recognition, error) {
	if f.extractFn != nil {
		return f.extractFn(ctx, text)
	}
	return domain.Recognition{}, nil
}

func (f *fakeNLU) HealthCheck(context.Context) error { return f.healthErr }

type fakeReader struct {
	files map[string]string
}

func (r *fakeReader) List(_ context.Context, _ string) ([]string, error) {
	paths := make([]string, 0, len(r.files))
	for p := range r.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths, nil
}

func (r *fakeReader) Read(_ context.Context, path string) (string, error) {
	text, ok := r.files[path]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

type fakePinger struct{ err error }

func (p *fakePinger) Ping(context.Context) error { return p.err }

type memRuns struct {
	mu      sync.Mutex
	reports map[string]dombatch.Report
	latest  string
}

func newMemRuns() *memRuns { return &memRuns{reports: make(map[string]dombatch.Report)} }

func (m *memRuns) Save(_ context.Context, r dombatch.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.RunID] = r
	m.latest = r.RunID
	return nil
}

func (m *memRuns) Get(_ context.Context, id string) (dombatch.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return dombatch.Report{}, domain.ErrNotFound
	}
	return r, nil
}

func (m *memRuns) Latest(ctx context.Context) (dombatch.Report, error) {
	m.mu.Lock()
	id := m.latest
	m.mu.Unlock()
	if id == "" {
		return dombatch.Report{}, domain.ErrNotFound
	}
	return m.Get(ctx, id)
}

type testEnv struct {
	catalog *memCatalog
	nlu     *fakeNLU
	reader  *fakeReader
	pinger  *fakePinger
	runs    *memRuns
	dir     string
}

func newTestEnv(recs ...record.Record) *testEnv {
	return &testEnv{
		catalog: newMemCatalog(recs...),
		nlu:     &fakeNLU{},
		reader:  &fakeReader{files: map[string]string{}},
		pinger:  &fakePinger{},
		runs:    newMemRuns(),
		dir:     "/data/sheets",
	}
}

// handler builds the full router the way cmd/specdex does.
func (e *testEnv) handler(t *testing.T) http.Handler {
	t.Helper()
	nlu := recognition.NewInstrumented(e.nlu, e.nlu, "test", "test-model", zap.NewNop())

	n := 0
	search := searchuc.New(e.catalog, nlu)
	ingest := ingestuc.New(nlu, e.catalog, e.reader).
		WithClock(func() time.Time { return testTime }).
		WithRunIDs(func() string {
			n++
			return "run-" + strconv.Itoa(n)
		})
	export := exportuc.New(e.catalog)
	health := healthuc.New(e.pinger, e.nlu)

	var runs RunReader
	if e.runs != nil {
		runs = e.runs
		ingest.WithRunStore(e.runs)
	}
	srv := NewServer(search, ingest, export, health, runs, e.dir, zap.NewNop())

	r := chi.NewRouter()
	srv.Mount(r)
	return r
}

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func laptop(id, brand, inches string, price int64) record.Record {
	fs := field.NewSet()
	fs.Put(field.Brand, field.String(brand))
	fs.Put(field.ScreenInches, field.String(inches))
	if price > 0 {
		fs.Put(field.Price, field.Int(price))
	}
	return record.Assemble(id, fs, testTime)
}
