package renamify

import (
	"context"
	"log/slog"
	"time"
)

// AcquireSuggestion obtains a SuggestionRecord for one image, tolerating
// transient failures and malformed model output. Transport errors retry per
// cfg.Retry; schema errors get one repair pass inside ParseSuggestion; and
// any unrecoverable outcome (retries exhausted, permanent error, confidence
// below threshold) degrades to a locally computed fallback. The returned
// record is always usable — this function never fails.
//
// The cache is deliberately not consulted here: cache reads and writes are
// the orchestrator's responsibility, keeping acquisition pure.
func (cfg *Config) AcquireSuggestion(ctx context.Context, data []byte, mimeType string, ocrTokens []string, s Settings) SuggestionRecord {
	cfg.defaults()
	start := time.Now()

	if !s.OCREnabled {
		ocrTokens = nil
	}

	rec, ok := cfg.trySuggest(ctx, data, mimeType, ocrTokens, s)
	if !ok {
		rec = FallbackSuggestion(data, ocrTokens)
	} else if rec.Confidence < s.ConfidenceThreshold {
		slog.Debug("renamify: confidence below threshold, using fallback",
			"name", rec.Name, "confidence", rec.Confidence, "threshold", s.ConfidenceThreshold)
		rec = FallbackSuggestion(data, ocrTokens)
	}

	rec.Latency = time.Since(start)
	if cfg.OnSuggestion != nil {
		cfg.OnSuggestion(rec)
	}
	return rec
}

// trySuggest runs the retry loop around the vision backend and parses the
// response. Returns ok=false when no valid record could be obtained.
func (cfg *Config) trySuggest(ctx context.Context, data []byte, mimeType string, ocrTokens []string, s Settings) (SuggestionRecord, bool) {
	if cfg.Suggester == nil {
		return SuggestionRecord{}, false
	}

	req := SuggestRequest{
		Data:      data,
		MIMEType:  mimeType,
		OCRTokens: ocrTokens,
		Settings:  s,
	}

	var rec SuggestionRecord
	err := cfg.Retry.Do(ctx, func(ctx context.Context) error {
		raw, err := cfg.Suggester.Suggest(ctx, req)
		if err != nil {
			return err
		}
		parsed, err := ParseSuggestion(raw)
		if err != nil {
			// Unparseable output exhausts its repair pass inside
			// ParseSuggestion; a fresh model call may still fix it.
			return &ProviderError{Transient: true, Err: err}
		}
		rec = parsed
		return nil
	})
	if err != nil {
		slog.Warn("renamify: suggestion acquisition failed", "error", err.Error())
		return SuggestionRecord{}, false
	}
	return rec, true
}
