package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	jsonSetNXFn   func(ctx context.Context, key, path string, data []byte) (bool, error)
	jsonGetFn     func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn         func(ctx context.Context, key string) error
	existsFn      func(ctx context.Context, key string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchFn      func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error) {
	if m.jsonSetNXFn != nil {
		return m.jsonSetNXFn(ctx, key, path, data)
	}
	return true, nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, ""), ms
}

var testTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func testRecord(t *testing.T) record.Record {
	t.Helper()
	fs := field.NewSet()
	fs.Put(field.Brand, field.String("HP"))
	fs.Put(field.Model, field.String("Pavilion 15"))
	fs.Put(field.ScreenInches, field.String("15.6"))
	fs.Put(field.Price, field.Int(2206))
	return record.Assemble("hp-pavilion.pdf", fs, testTime).
		WithExtras(map[string]string{"color": "plata"})
}
