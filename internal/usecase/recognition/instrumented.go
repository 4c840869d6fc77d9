package recognition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
)

// Instrumented wraps the recognizer and extractor with logging and
// per-request usage accounting.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type Instrumented struct {
	recognizer domain.Recognizer
	extractor  domain.Extractor
	provider   string
	model      string
	logger     *zap.Logger
}

// NewInstrumented wraps a recognizer and an extractor with observability.
func NewInstrumented(
	rec domain.Recognizer, ext domain.Extractor, provider, model string, logger *zap.Logger,
) *Instrumented {
	return &Instrumented{
		recognizer: rec,
		extractor:  ext,
		provider:   provider,
		model:      model,
		logger:     logger,
	}
}

// Recognize extracts entities from conversational text.
func (p *Instrumented) Recognize(ctx context.Context, text string) (domain.Recognition, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Recognition{}, domain.ErrEmptyQuery
	}
	return p.call(ctx, "Recognition", len(text), func() (domain.Recognition, error) {
		return p.recognizer.Recognize(ctx, text)
	})
}

// Extract extracts spec sheet fields from document text.
func (p *Instrumented) Extract(ctx context.Context, text string) (domain.Recognition, error) {
	if p.extractor == nil {
		return domain.Recognition{}, fmt.Errorf("no extractor configured: %w", domain.ErrRecognizerFailed)
	}
	if strings.TrimSpace(text) == "" {
		return domain.Recognition{}, fmt.Errorf("empty document: %w", domain.ErrInvalidInput)
	}
	return p.call(ctx, "Extraction", len(text), func() (domain.Recognition, error) {
		return p.extractor.Extract(ctx, text)
	})
}

func (p *Instrumented) call(
	ctx context.Context, op string, textLen int, fn func() (domain.Recognition, error),
) (domain.Recognition, error) {
	start := time.Now()

	result, err := fn()

	duration := time.Since(start)

	if err != nil {
		p.logger.Error(op+" request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Int("text_len", textLen),
			zap.Error(err),
		)
		return domain.Recognition{}, fmt.Errorf("%s: %w", strings.ToLower(op), err)
	}

	domain.UsageFromContext(ctx).Add(result.TotalTokens)

	p.logger.Debug(op+" request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("spans", len(result.Spans)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
