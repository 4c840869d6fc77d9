package chi

import (
	"time"

	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
	"github.com/kailas-cloud/specdex/internal/domain/span"
)

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// API error codes.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeNotFound          ErrorResponseCode = "not_found"
	ErrorResponseCodeRecordNotFound    ErrorResponseCode = "record_not_found"
	ErrorResponseCodeRateLimited       ErrorResponseCode = "rate_limited"
	ErrorResponseCodeRecognizerFailed  ErrorResponseCode = "recognizer_failed"
	ErrorResponseCodeUnsupportedSource ErrorResponseCode = "unsupported_source"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
}

// PredicateParam is one bound query parameter.
type PredicateParam struct {
	Name  string `json:"name"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

// PredicateResponse renders the predicate a query was answered with.
type PredicateResponse struct {
	Query  string           `json:"query"`
	Params []PredicateParam `json:"params"`
}

// SearchResponse is returned by POST /search and filtered GET /records.
type SearchResponse struct {
	Query     string            `json:"query,omitempty"`
	Fields    map[string]any    `json:"fields"`
	Extras    map[string]string `json:"extras,omitempty"`
	Predicate PredicateResponse `json:"predicate"`
	Total     int               `json:"total"`
	Items     []RecordResponse  `json:"items"`
}

// RecordListResponse is returned by unfiltered GET /records.
type RecordListResponse struct {
	Total  int              `json:"total"`
	Offset int              `json:"offset"`
	Items  []RecordResponse `json:"items"`
}

// RecordResponse is one catalog record.
type RecordResponse struct {
	ID         string            `json:"id"`
	SourceFile string            `json:"source_file"`
	Fields     map[string]any    `json:"fields"`
	Extras     map[string]string `json:"extras,omitempty"`
	IngestedAt time.Time         `json:"ingested_at"`
}

// SpanItem is one pre-extracted entity. A missing offset means unlocated,
// a missing confidence means certain.
type SpanItem struct {
	Category   string   `json:"category"`
	Text       string   `json:"text"`
	Offset     *int     `json:"offset,omitempty"`
	Length     int      `json:"length,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// SpansRequest is the body of PUT /records/{id}/spans.
type SpansRequest struct {
	Spans []SpanItem `json:"spans"`
}

// ResultItem is the outcome of ingesting one document.
type ResultItem struct {
	ID     string              `json:"id"`
	Source string              `json:"source,omitempty"`
	Status dombatch.ItemStatus `json:"status"`
	Fields int                 `json:"fields"`
	Error  *ErrorResponse      `json:"error,omitempty"`
}

// RunResponse is the report of one ingestion run.
type RunResponse struct {
	RunID      string       `json:"run_id"`
	Directory  string       `json:"directory"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
	Results    []ResultItem `json:"results"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func fieldsToAPI(s field.Set) map[string]any {
	out := make(map[string]any)
	for _, n := range s.Present() {
		out[string(n)] = valueToAPI(s.Get(n))
	}
	return out
}

func valueToAPI(v field.Value) any {
	if n, ok := v.Int(); ok {
		return n
	}
	return v.String()
}

func predicateToAPI(p predicate.Predicate) PredicateResponse {
	cs := p.Constraints()
	params := make([]PredicateParam, len(cs))
	for i, c := range cs {
		params[i] = PredicateParam{
			Name:  c.Param().Name,
			Field: string(c.Field()),
			Value: valueToAPI(c.Value()),
		}
	}
	return PredicateResponse{Query: p.String(), Params: params}
}

func recordToAPI(r *record.Record) RecordResponse {
	return RecordResponse{
		ID:         r.Identity(),
		SourceFile: r.Source(),
		Fields:     fieldsToAPI(r.Fields()),
		Extras:     r.Extras(),
		IngestedAt: r.IngestedAt(),
	}
}

func recordsToAPI(recs []record.Record) []RecordResponse {
	out := make([]RecordResponse, len(recs))
	for i := range recs {
		out[i] = recordToAPI(&recs[i])
	}
	return out
}

func spansFromAPI(items []SpanItem) []span.Span {
	out := make([]span.Span, len(items))
	for i, it := range items {
		sp := span.Span{
			Category:   it.Category,
			Text:       it.Text,
			Offset:     -1,
			Length:     it.Length,
			Confidence: 1,
		}
		if it.Offset != nil {
			sp.Offset = *it.Offset
		}
		if it.Confidence != nil {
			sp.Confidence = *it.Confidence
		}
		out[i] = sp
	}
	return out
}

func resultToAPI(r dombatch.Result) ResultItem {
	item := ResultItem{
		ID:     r.ID(),
		Source: r.Source(),
		Status: r.Status(),
		Fields: r.Fields(),
	}
	if err := r.Err(); err != nil {
		item.Error = &ErrorResponse{Code: resultErrorCode(err), Message: safeDomainMessage(err)}
	}
	return item
}

func reportToAPI(r *dombatch.Report) RunResponse {
	results := make([]ResultItem, len(r.Results))
	for i, res := range r.Results {
		results[i] = resultToAPI(res)
	}
	return RunResponse{
		RunID:      r.RunID,
		Directory:  r.Directory,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Created:    r.Count(dombatch.StatusCreated),
		Updated:    r.Count(dombatch.StatusUpdated),
		Skipped:    r.Count(dombatch.StatusSkipped),
		Failed:     r.Count(dombatch.StatusError),
		Results:    results,
	}
}
