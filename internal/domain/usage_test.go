package domain

import (
	"context"
	"errors"
	"testing"
)

func TestUsageFromContext(t *testing.T) {
	if UsageFromContext(context.Background()) != nil {
		t.Fatal("expected nil usage on bare context")
	}

	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).Add(120)
	UsageFromContext(ctx).Add(30)
	if u.Calls != 2 || u.TotalTokens != 150 {
		t.Errorf("usage = %+v", *u)
	}
}

func TestRecognizerUsage_NilSafe(t *testing.T) {
	var u *RecognizerUsage
	u.Add(10) // must not panic
}

func TestSourceError(t *testing.T) {
	err := NewSourceError("/data/a.pdf", ErrUnsupportedSource)
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Error("SourceError must unwrap to its cause")
	}
	var se *SourceError
	if !errors.As(err, &se) || se.Path != "/data/a.pdf" {
		t.Errorf("errors.As failed: %v", err)
	}
	if err.Error() != "source /data/a.pdf: unsupported source" {
		t.Errorf("Error() = %q", err.Error())
	}
}
