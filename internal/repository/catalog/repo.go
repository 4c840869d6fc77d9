package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
)

// store is the consumer interface for catalog records (ISP).
//
//nolint:interfacebloat // catalog repo needs JSON + index management operations
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

// Repo implements the catalog repository of the search and ingest usecases.
type Repo struct {
	store  store
	prefix string
	index  string
}

// New creates a catalog repository. An empty prefix selects DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix, index: prefix + "idx"}
}

// IndexName returns the FT index name.
func (r *Repo) IndexName() string { return r.index }

// EnsureIndex creates the catalog index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.index)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.index, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, buildIndex(r.index, r.prefix)); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.index, err)
	}
	return nil
}

// Reindex drops and recreates the catalog index so stored records are
// re-indexed under the current schema. Records are kept.
func (r *Repo) Reindex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.index); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.index, err)
	}
	return r.EnsureIndex(ctx)
}

// Upsert stores a record under its identity key. Returns true if created.
// The NX write decides creation, so concurrent writers of one key see a
// single created.
func (r *Repo) Upsert(ctx context.Context, rec record.Record) (bool, error) {
	if rec.Identity() == "" {
		return false, fmt.Errorf("record identity: %w", domain.ErrInvalidInput)
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return false, err
	}

	key := r.key(rec.Identity())
	created, err := r.store.JSONSetNX(ctx, key, "$", data)
	if err != nil {
		return false, fmt.Errorf("json.set nx %s: %w", key, err)
	}
	if created {
		return true, nil
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return false, nil
}

// Exists reports whether a record with the identity key is stored.
func (r *Repo) Exists(ctx context.Context, identity string) (bool, error) {
	key := r.key(identity)
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	return ok, nil
}

// Get returns a record by identity key.
func (r *Repo) Get(ctx context.Context, identity string) (record.Record, error) {
	key := r.key(identity)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return record.Record{}, domain.ErrRecordNotFound
		}
		return record.Record{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return record.Record{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return rec, nil
}

// Find returns the records matching the predicate, ordered by identity.
// The empty predicate returns the whole catalog. limit <= 0 uses the store default.
func (r *Repo) Find(
	ctx context.Context, p predicate.Predicate, offset, limit int,
) ([]record.Record, int, error) {
	result, err := r.store.Search(ctx, &db.Query{
		IndexName:    r.index,
		Predicate:    p,
		SortBy:       attrID,
		Offset:       offset,
		Limit:        limit,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", r.index, err)
	}
	if result == nil || result.Total == 0 {
		return nil, 0, nil
	}

	recs := make([]record.Record, 0, len(result.Entries))
	for _, entry := range result.Entries {
		jsonStr := entry.Fields["$"]
		if jsonStr == "" {
			continue
		}
		rec, err := decodeRecord([]byte(jsonStr))
		if err != nil {
			return nil, 0, fmt.Errorf("decode %s: %w", entry.Key, err)
		}
		recs = append(recs, rec)
	}
	return recs, result.Total, nil
}

// Delete removes a record.
func (r *Repo) Delete(ctx context.Context, identity string) error {
	key := r.key(identity)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrRecordNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(identity string) string {
	return r.prefix + identity
}
