package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
)

// DefaultLimit caps FT.SEARCH results when the query sets no limit.
const DefaultLimit = 1000

// Search runs a parameterized conjunctive filter via FT.SEARCH.
// Values never enter the query string: each constraint references its
// positional parameter and the values travel in PARAMS.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q == nil || q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}

	args := buildSearchArgs(q)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseListResult(raw)
}

func buildSearchArgs(q *db.Query) []string {
	args := []string{q.IndexName, buildQuery(q.Predicate)}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	if q.SortBy != "" {
		args = append(args, "SORTBY", q.SortBy, "ASC")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	args = append(args, "LIMIT", strconv.Itoa(max(q.Offset, 0)), strconv.Itoa(limit))

	if params := q.Predicate.Params(); len(params) > 0 {
		args = append(args, "PARAMS", strconv.Itoa(2*len(params)))
		for _, p := range params {
			args = append(args, p.Name, p.Value.String())
		}
	}

	return append(args, "DIALECT", "2")
}

// buildQuery renders the predicate as FT.SEARCH syntax, e.g.
// `@Brand:{$p0} @ScreenInches:{$p1}`. Empty predicate matches all.
func buildQuery(p predicate.Predicate) string {
	if p.IsEmpty() {
		return "*"
	}
	cs := p.Constraints()
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, buildConstraint(c))
	}
	return strings.Join(parts, " ")
}

func buildConstraint(c predicate.Constraint) string {
	name := c.Param().Name
	if c.Value().Kind() == field.Integer {
		return fmt.Sprintf("@%s:[$%s $%s]", c.Field(), name, name)
	}
	return fmt.Sprintf("@%s:{$%s}", c.Field(), name)
}

// --- Result parsing ---

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
