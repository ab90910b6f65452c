package renamify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// stubSuggester scripts vision-backend responses for orchestration tests.
type stubSuggester struct {
	mu    sync.Mutex
	calls int
	fn    func(req SuggestRequest) (string, error)
}

func (s *stubSuggester) Suggest(_ context.Context, req SuggestRequest) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.fn(req)
}

func (s *stubSuggester) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestAcquireSuggestionSuccess(t *testing.T) {
	t.Parallel()

	var seen []SuggestionRecord
	cfg := &Config{
		Suggester: &stubSuggester{fn: func(SuggestRequest) (string, error) {
			return `{"name": "beach sunset", "confidence": 0.9}`, nil
		}},
		Retry:        testPolicy(3, &[]time.Duration{}),
		OnSuggestion: func(rec SuggestionRecord) { seen = append(seen, rec) },
	}

	rec := cfg.AcquireSuggestion(context.Background(), []byte("img"), "image/jpeg", nil, DefaultSettings())
	if rec.Name != "beach sunset" || rec.Source != SourceAI {
		t.Errorf("rec = %+v, want ai suggestion %q", rec, "beach sunset")
	}
	if len(seen) != 1 {
		t.Errorf("OnSuggestion fired %d times, want 1", len(seen))
	}
}

func TestAcquireSuggestionBelowThreshold(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Suggester: &stubSuggester{fn: func(SuggestRequest) (string, error) {
			return `{"name": "blurry thing", "confidence": 0.1}`, nil
		}},
		Retry: testPolicy(3, &[]time.Duration{}),
	}

	s := DefaultSettings()
	s.OCREnabled = true
	rec := cfg.AcquireSuggestion(context.Background(), nil, "", []string{"grand", "hotel"}, s)
	if rec.Source != SourceFallback {
		t.Fatalf("source = %q, want fallback below threshold", rec.Source)
	}
	if rec.Name != "grand-hotel" {
		t.Errorf("name = %q, want OCR-derived fallback", rec.Name)
	}
}

func TestAcquireSuggestionExhaustedFallsBack(t *testing.T) {
	t.Parallel()

	stub := &stubSuggester{fn: func(SuggestRequest) (string, error) {
		return "", &ProviderError{StatusCode: 503, Transient: true, Err: errors.New("overloaded")}
	}}
	cfg := &Config{Suggester: stub, Retry: testPolicy(2, &[]time.Duration{})}

	rec := cfg.AcquireSuggestion(context.Background(), nil, "", nil, DefaultSettings())
	if rec.Source != SourceFallback {
		t.Fatalf("source = %q, want fallback after exhausted retries", rec.Source)
	}
	if rec.Name == "" {
		t.Error("fallback produced an empty name")
	}
	if got := stub.callCount(); got != 2 {
		t.Errorf("backend calls = %d, want 2", got)
	}
}

func TestAcquireSuggestionUnparseableRetried(t *testing.T) {
	t.Parallel()

	stub := &stubSuggester{}
	stub.fn = func(SuggestRequest) (string, error) {
		if stub.callCount() == 1 {
			return "I cannot help with that.", nil
		}
		return `{"name": "second try", "confidence": 0.8}`, nil
	}
	cfg := &Config{Suggester: stub, Retry: testPolicy(3, &[]time.Duration{})}

	rec := cfg.AcquireSuggestion(context.Background(), nil, "", nil, DefaultSettings())
	if rec.Name != "second try" || rec.Source != SourceAI {
		t.Errorf("rec = %+v, want recovery on the second call", rec)
	}
}

func TestAcquireSuggestionDropsTokensWhenOCRDisabled(t *testing.T) {
	t.Parallel()

	var gotTokens []string
	cfg := &Config{
		Suggester: &stubSuggester{fn: func(req SuggestRequest) (string, error) {
			gotTokens = req.OCRTokens
			return `{"name": "x", "confidence": 0.9}`, nil
		}},
		Retry: testPolicy(1, &[]time.Duration{}),
	}

	s := DefaultSettings()
	s.OCREnabled = false
	cfg.AcquireSuggestion(context.Background(), nil, "", []string{"menu", "pizza"}, s)
	if gotTokens != nil {
		t.Errorf("tokens forwarded despite OCR disabled: %v", gotTokens)
	}
}
