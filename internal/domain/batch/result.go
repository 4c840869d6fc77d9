package batch

import "errors"

// ItemStatus is the ingestion outcome of a single source document.
type ItemStatus string

// Item status values.
const (
	StatusCreated ItemStatus = "created"
	StatusUpdated ItemStatus = "updated"
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of ingesting one document of a batch.
type Result struct {
	id     string
	source string
	status ItemStatus
	fields int
	err    error
}

// NewStored creates a successful result; created tells a first insert from an upsert.
func NewStored(id, source string, created bool, fields int) Result {
	st := StatusUpdated
	if created {
		st = StatusCreated
	}
	return Result{id: id, source: source, status: st, fields: fields}
}

// NewSkipped creates a result for a document that was already ingested.
func NewSkipped(id, source string) Result {
	return Result{id: id, source: source, status: StatusSkipped}
}

// NewError creates a failed result.
func NewError(id, source string, err error) Result {
	return Result{id: id, source: source, status: StatusError, err: err}
}

// ID returns the record identity key.
func (r Result) ID() string { return r.id }

// Source returns the source path.
func (r Result) Source() string { return r.source }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Fields returns the number of present catalog fields stored.
func (r Result) Fields() int { return r.fields }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// OK reports whether the document ended in the store.
func (r Result) OK() bool { return r.status == StatusCreated || r.status == StatusUpdated }

// Reconstruct creates a Result from stored attributes (storage hydration).
// A non-empty message becomes the result error.
func Reconstruct(id, source string, status ItemStatus, fields int, message string) Result {
	r := Result{id: id, source: source, status: status, fields: fields}
	if message != "" {
		r.err = errors.New(message)
	}
	return r
}
