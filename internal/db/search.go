package db

import "github.com/kailas-cloud/specdex/internal/domain/search/predicate"

// Query is the input for a parameterized filter search.
// An empty predicate matches every document of the index. Integer values
// constrain NUMERIC fields, text values constrain TAG fields.
type Query struct {
	IndexName    string
	Predicate    predicate.Predicate
	SortBy       string
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
