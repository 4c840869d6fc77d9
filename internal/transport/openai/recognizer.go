package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	"github.com/kailas-cloud/specdex/internal/domain/span"
	"github.com/kailas-cloud/specdex/internal/metrics"
)

const (
	modeQuery    = "query"
	modeDocument = "document"
)

// Recognizer labels laptop entities through an OpenAI-compatible chat API.
// It serves both conversational queries and whole spec sheets.
type Recognizer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxChars    int
	provider    string
	logger      *zap.Logger
}

// Config holds the recognizer provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	// MaxDocumentChars truncates spec sheet text sent to the model (0 = no limit).
	MaxDocumentChars int
	HTTPClient       *http.Client
	Provider         string
	Logger           *zap.Logger
}

// NewRecognizer creates an OpenAI-compatible recognizer.
func NewRecognizer(cfg *Config) *Recognizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Recognizer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxChars:    cfg.MaxDocumentChars,
		provider:    cfg.Provider,
		logger:      logger,
	}
}

// Recognize implements domain.Recognizer. Span offsets are located in text;
// an entity the model did not copy verbatim gets offset -1.
func (r *Recognizer) Recognize(ctx context.Context, text string) (domain.Recognition, error) {
	reply, usage, err := r.complete(ctx, modeQuery, queryPrompt(), text)
	if err != nil {
		return domain.Recognition{}, err
	}

	spans := make([]span.Span, 0, len(reply.Entities))
	cursor := 0
	for _, e := range reply.Entities {
		offset := locate(text, e.Text, cursor)
		if offset >= 0 {
			cursor = offset + len(e.Text)
		}
		spans = append(spans, span.Span{
			Category:   e.Category,
			Text:       e.Text,
			Offset:     offset,
			Length:     len(e.Text),
			Confidence: confidence(e),
		})
	}
	return r.result(modeQuery, spans, usage), nil
}

// Extract implements domain.Extractor. Spans carry no position.
func (r *Recognizer) Extract(ctx context.Context, text string) (domain.Recognition, error) {
	if r.maxChars > 0 && len(text) > r.maxChars {
		text = truncateUTF8(text, r.maxChars)
	}
	reply, usage, err := r.complete(ctx, modeDocument, documentPrompt(), text)
	if err != nil {
		return domain.Recognition{}, err
	}

	spans := make([]span.Span, 0, len(reply.Entities))
	for _, e := range reply.Entities {
		spans = append(spans, span.Span{
			Category:   e.Category,
			Text:       e.Text,
			Offset:     -1,
			Confidence: confidence(e),
		})
	}
	return r.result(modeDocument, spans, usage), nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (r *Recognizer) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (r *Recognizer) complete(
	ctx context.Context, mode, system, text string,
) (entitiesReply, openai.Usage, error) {
	req := openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: r.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()

	resp, err := r.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		r.fail(mode, "api_error")
		return entitiesReply{}, openai.Usage{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		r.fail(mode, "empty_response")
		return entitiesReply{}, openai.Usage{}, fmt.Errorf("no choices in response: %w", domain.ErrRecognizerFailed)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	reply, err := decodeReply([]byte(content))
	if err != nil {
		r.fail(mode, "invalid_reply")
		r.logger.Warn("Recognizer reply rejected",
			zap.String("provider", r.provider),
			zap.String("mode", mode),
			zap.Int("content_len", len(content)),
			zap.Error(err),
		)
		return entitiesReply{}, openai.Usage{}, fmt.Errorf("%w: %w", domain.ErrRecognizerFailed, err)
	}

	metrics.RecognizerRequestsTotal.WithLabelValues(r.provider, mode, "success").Inc()
	metrics.RecognizerRequestDuration.WithLabelValues(r.provider, mode).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.RecognizerTokensTotal.WithLabelValues(r.provider, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.RecognizerTokensTotal.WithLabelValues(r.provider, "total").Add(float64(resp.Usage.TotalTokens))
	}
	return reply, resp.Usage, nil
}

func (r *Recognizer) result(mode string, spans []span.Span, usage openai.Usage) domain.Recognition {
	metrics.RecognizerSpansTotal.WithLabelValues(mode).Add(float64(len(spans)))
	return domain.Recognition{
		Spans:        spans,
		PromptTokens: usage.PromptTokens,
		TotalTokens:  usage.TotalTokens,
	}
}

func (r *Recognizer) fail(mode, errorType string) {
	metrics.RecognizerRequestsTotal.WithLabelValues(r.provider, mode, "error").Inc()
	metrics.RecognizerErrorsTotal.WithLabelValues(r.provider, errorType).Inc()
}

// locate finds needle in text at or after cursor, falling back to the first
// occurrence. Returns -1 when the text was not copied verbatim.
func locate(text, needle string, cursor int) int {
	if needle == "" {
		return -1
	}
	if cursor < len(text) {
		if i := strings.Index(text[cursor:], needle); i >= 0 {
			return cursor + i
		}
	}
	return strings.Index(text, needle)
}

// confidence defaults to 1 when the model omits it.
func confidence(e entity) float64 {
	if e.Confidence == nil {
		return 1
	}
	return *e.Confidence
}

func truncateUTF8(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// parseAPIError extracts a human-readable error from the API response.
// Rate limits map to domain.ErrRateLimited, everything else to domain.ErrRecognizerFailed.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		wrap := wrapFor(reqErr.HTTPStatusCode)
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("recognizer API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("recognizer API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("recognizer API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrapFor(apiErr.HTTPStatusCode))
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("recognizer request: %w: %w", domain.ErrRecognizerFailed, err)
	}
	return fmt.Errorf("recognizer request failed: %w", domain.ErrRecognizerFailed)
}

func wrapFor(status int) error {
	if status == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return domain.ErrRecognizerFailed
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
