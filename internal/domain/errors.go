package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrRecordNotFound signals a missing catalog record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidInput signals a malformed request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyQuery signals a blank search text.
	ErrEmptyQuery = errors.New("empty query")
	// ErrRecognizerFailed signals an NLU or extraction provider failure.
	ErrRecognizerFailed = errors.New("recognizer failed")
	// ErrRateLimited signals a provider rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnsupportedSource signals a source file type that cannot be read.
	ErrUnsupportedSource = errors.New("unsupported source")
)

// SourceError wraps a failure while reading one source document.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// NewSourceError creates a source error for path.
func NewSourceError(path string, err error) error {
	return &SourceError{Path: path, Err: err}
}
