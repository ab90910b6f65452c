// Package renamify turns a batch of images into validated, collision-free,
// human-meaningful filenames. A vision model proposes a base name per image;
// deterministic local policy (sanitization, casing, truncation, batch-wide
// uniqueness) turns the proposal into a final filename. Results are cached by
// a content+settings fingerprint so reruns with unchanged inputs never hit
// the model twice.
package renamify

import (
	"context"
	"net/http"
	"time"
)

// DefaultConcurrency is the default number of in-flight vision calls per batch.
const DefaultConcurrency = 3

// SuggestRequest carries everything a vision backend needs for one image.
type SuggestRequest struct {
	Data      []byte   // raw image bytes
	MIMEType  string   // e.g. "image/jpeg"
	OCRTokens []string // optional text context extracted upstream
	Settings  Settings // casing/length hints baked into the prompt
}

// Suggester abstracts the vision-model call. Implementations return the raw
// model output text; parsing, validation and repair happen in the caller.
// Errors should be *ProviderError so the retry layer can classify them.
type Suggester interface {
	Suggest(ctx context.Context, req SuggestRequest) (string, error)
}

// OCRProvider supplies ranked text tokens for an image. Token extraction is an
// external concern; renamify only consumes the result.
type OCRProvider interface {
	Tokens(ctx context.Context, data []byte) []string
}

// Config holds all dependencies injected by the consumer.
type Config struct {
	Suggester   Suggester       // required for AI suggestions (nil = fallback only)
	Cache       SuggestionCache // optional; nil disables result caching
	OCR         OCRProvider     // optional; nil means no OCR context
	HTTPClient  *http.Client    // optional transport for built-in suggesters
	Concurrency int             // max in-flight vision calls (default: 3)
	Retry       RetryPolicy     // zero value = DefaultRetryPolicy

	// Optional callbacks for metrics/logging.
	OnSuggestion func(SuggestionRecord)
	OnPanic      func(tag string, r any)
}

// defaults fills zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = DefaultRetryPolicy()
	}
}
