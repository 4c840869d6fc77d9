package ingestrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain"
	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
)

// DefaultKeyPrefix namespaces run report keys.
const DefaultKeyPrefix = "specdex:run:"

const latestKey = "latest"

// store is the consumer interface for run reports (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store keeps ingestion run reports as expiring JSON strings (SET EX + GET).
type Store struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a run report store. Reports expire after ttl (recommended: 7 days).
func New(s store, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{store: s, prefix: prefix, ttl: ttl}
}

// Save stores the report and marks it as the latest run.
func (s *Store) Save(ctx context.Context, r dombatch.Report) error {
	if r.RunID == "" {
		return fmt.Errorf("run id: %w", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(toDTO(r))
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", r.RunID, err)
	}

	key := s.prefix + r.RunID
	if err := s.store.SetWithTTL(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("run SET %s: %w", key, err)
	}
	if err := s.store.SetWithTTL(ctx, s.prefix+latestKey, []byte(r.RunID), s.ttl); err != nil {
		return fmt.Errorf("run SET %s: %w", s.prefix+latestKey, err)
	}
	return nil
}

// Get returns a stored report by run id.
func (s *Store) Get(ctx context.Context, runID string) (dombatch.Report, error) {
	key := s.prefix + runID
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dombatch.Report{}, domain.ErrNotFound
		}
		return dombatch.Report{}, fmt.Errorf("run GET %s: %w", key, err)
	}

	var d reportDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return dombatch.Report{}, fmt.Errorf("run GET %s parse: %w", key, err)
	}
	return d.toDomain(), nil
}

// Latest returns the most recently saved report.
func (s *Store) Latest(ctx context.Context) (dombatch.Report, error) {
	id, err := s.store.Get(ctx, s.prefix+latestKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dombatch.Report{}, domain.ErrNotFound
		}
		return dombatch.Report{}, fmt.Errorf("run GET %s: %w", s.prefix+latestKey, err)
	}
	return s.Get(ctx, string(id))
}
