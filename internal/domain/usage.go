package domain

import "context"

type recognizerUsageKey struct{}

// RecognizerUsage collects token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the recognizer decorator writes after each call; the handler reads it for
// response headers.
type RecognizerUsage struct {
	Calls       int
	TotalTokens int
}

// NewContextWithUsage returns a context with a usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *RecognizerUsage) {
	u := &RecognizerUsage{}
	return context.WithValue(ctx, recognizerUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *RecognizerUsage {
	u, _ := ctx.Value(recognizerUsageKey{}).(*RecognizerUsage)
	return u
}

// Add records one recognizer call.
func (u *RecognizerUsage) Add(tokens int) {
	if u != nil {
		u.Calls++
		u.TotalTokens += tokens
	}
}
