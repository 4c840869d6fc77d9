package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/specdex/internal/domain"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
)

type mockRepo struct {
	findFn func(ctx context.Context, p predicate.Predicate, offset, limit int) ([]record.Record, int, error)
	getFn  func(ctx context.Context, identity string) (record.Record, error)
}

func (m *mockRepo) Find(ctx context.Context, p predicate.Predicate, offset, limit int) ([]record.Record, int, error) {
	if m.findFn != nil {
		return m.findFn(ctx, p, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockRepo) Get(ctx context.Context, identity string) (record.Record, error) {
	if m.getFn != nil {
		return m.getFn(ctx, identity)
	}
	return record.Record{}, domain.ErrRecordNotFound
}

type mockRecognizer struct {
	recognizeFn func(ctx context.Context, text string) (domain.Recognition, error)
}

func (m *mockRecognizer) Recognize(ctx context.Context, text string) (domain.Recognition, error) {
	if m.recognizeFn != nil {
		return m.recognizeFn(ctx, text)
	}
	return domain.Recognition{}, nil
}

func hpRecord() record.Record {
	fs := field.NewSet()
	fs.Put(field.Brand, field.String("HP"))
	fs.Put(field.ScreenInches, field.String("15.6"))
	return record.Assemble("hp.pdf", fs, time.Unix(0, 0).UTC())
}
