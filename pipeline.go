package renamify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// creditsPerCall is the estimated credit cost of one vision call.
const creditsPerCall = 1.0

// ErrNoSuggester means the pipeline was started without a vision backend.
var ErrNoSuggester = errors.New("renamify: no suggester configured")

// ImageRecord is one uploaded image. Created at upload, read-only during
// processing, discarded after export.
type ImageRecord struct {
	Filename  string
	Data      []byte
	MIMEType  string    // optional; inferred as image/jpeg when empty
	Taken     time.Time // optional EXIF capture date; zero = probe from Data
	OCRTokens []string  // optional precomputed text tokens
}

// BatchItem pairs one image's naming outcome with its acquisition details.
type BatchItem struct {
	NamingResult
	Fingerprint Fingerprint
	Suggestion  SuggestionRecord
	Width       int
	Height      int
}

// BatchStats aggregates one pipeline run.
type BatchStats struct {
	RunID            string
	Total            int
	CacheHits        int
	AICalls          int
	Fallbacks        int
	Cancelled        int
	EstimatedCredits float64
	Elapsed          time.Duration
}

// BatchResult is the ordered outcome of one pipeline run. Items preserve
// upload order regardless of the completion order of concurrent model calls.
type BatchResult struct {
	Items []BatchItem
	Stats BatchStats
}

// readiness lets a Suggester report missing prerequisites (credentials)
// before any per-item work starts.
type readiness interface {
	Ready() error
}

// Ready reports whether the suggester can make calls at all.
func (g *GeminiSuggester) Ready() error {
	if g.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}

// Run drives one batch: fingerprint each image, consult the cache, call the
// vision backend on misses (bounded concurrency), store results, then hand
// every raw suggestion to the naming engine in a single batch-scoped pass.
//
// Per-item failures never fail the batch; they degrade to fallback records
// plus diagnostics. The only batch-fatal conditions are invalid settings and
// a missing or unready suggester, both detected up front. Cancelling ctx
// stops issuing new calls; items not yet resolved are tagged cancelled and
// excluded from naming.
func (cfg *Config) Run(ctx context.Context, images []ImageRecord, s Settings) (*BatchResult, error) {
	cfg.defaults()
	start := time.Now()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if cfg.Suggester == nil {
		return nil, ErrNoSuggester
	}
	if r, ok := cfg.Suggester.(readiness); ok {
		if err := r.Ready(); err != nil {
			return nil, err
		}
	}

	res := &BatchResult{
		Items: make([]BatchItem, len(images)),
		Stats: BatchStats{RunID: uuid.NewString(), Total: len(images)},
	}

	// Phase 1: fingerprint + cache lookups, in upload order.
	pending := make([]int, 0, len(images))
	for i, img := range images {
		item := &res.Items[i]
		item.Fingerprint = ComputeFingerprint(img.Data, s)
		item.Width, item.Height = ImageDimensions(img.Data)

		if cfg.Cache != nil {
			if rec, ok := cfg.Cache.Get(item.Fingerprint); ok {
				rec.Source = SourceCache
				item.Suggestion = rec
				res.Stats.CacheHits++
				continue
			}
		}
		pending = append(pending, i)
	}

	// Phase 2: resolve cache misses concurrently. Each task owns a distinct
	// result slot and a distinct cache key, so no cross-task lock is needed.
	sem := make(chan struct{}, cfg.Concurrency)
	var wg sync.WaitGroup
	for _, i := range pending {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cfg.resolveOne(ctx, images[i], &res.Items[i], s)
		}(i)
	}
	wg.Wait()

	// Phase 3: tally sources and tag anything left unresolved as cancelled.
	for i := range res.Items {
		switch res.Items[i].Suggestion.Source {
		case SourceAI:
			res.Stats.AICalls++
		case SourceFallback:
			res.Stats.Fallbacks++
		case SourceCache:
		default:
			res.Items[i].Suggestion.Source = SourceCancelled
			res.Stats.Cancelled++
		}
	}
	res.Stats.EstimatedCredits = float64(res.Stats.AICalls) * creditsPerCall

	// Phase 4: single batch-level naming pass, strictly in upload order.
	reqs := make([]NameRequest, len(images))
	for i, img := range images {
		reqs[i] = NameRequest{
			Original: img.Filename,
			RawBase:  res.Items[i].Suggestion.Name,
			Taken:    captureDate(img, s),
			Include:  res.Items[i].Suggestion.Source != SourceCancelled,
		}
	}
	for i, nr := range RenameBatch(reqs, s) {
		res.Items[i].NamingResult = nr
		if res.Items[i].Suggestion.Source == SourceCancelled {
			res.Items[i].Final = ""
			res.Items[i].Notes = append(res.Items[i].Notes, diag("pipeline", "cancelled before acquisition"))
		}
		if res.Items[i].Suggestion.Source == SourceFallback {
			res.Items[i].Notes = append(res.Items[i].Notes, diag("fallback", "name produced by local heuristic"))
		}
	}

	// Phase 5: perceptual duplicate diagnostics.
	raw := make([][]byte, len(images))
	for i := range images {
		raw[i] = images[i].Data
	}
	for i, j := range duplicateScan(raw) {
		if j >= 0 {
			res.Items[i].Notes = append(res.Items[i].Notes,
				diag("dedup", "visually identical to "+images[j].Filename))
		}
	}

	res.Stats.Elapsed = time.Since(start)
	slog.Debug("renamify: batch complete",
		"run_id", res.Stats.RunID,
		"total", res.Stats.Total,
		"cache_hits", res.Stats.CacheHits,
		"ai_calls", res.Stats.AICalls,
		"fallbacks", res.Stats.Fallbacks,
		"cancelled", res.Stats.Cancelled)
	return res, nil
}

// resolveOne acquires a suggestion for a single cache miss and persists it.
// Recovers from panics to protect the worker pool.
func (cfg *Config) resolveOne(ctx context.Context, img ImageRecord, item *BatchItem, s Settings) {
	defer func() {
		if r := recover(); r != nil {
			if cfg.OnPanic != nil {
				cfg.OnPanic("suggestionAcquisition", r)
			}
			item.Suggestion = FallbackSuggestion(img.Data, img.OCRTokens)
		}
	}()

	if ctx.Err() != nil {
		return // left unresolved; tagged cancelled by the caller
	}

	tokens := img.OCRTokens
	if len(tokens) == 0 && cfg.OCR != nil && s.OCREnabled {
		tokens = cfg.OCR.Tokens(ctx, img.Data)
	}

	rec := cfg.AcquireSuggestion(ctx, img.Data, img.MIMEType, tokens, s)
	item.Suggestion = rec
	if cfg.Cache != nil {
		cfg.Cache.Put(item.Fingerprint, rec)
	}
}

// captureDate returns the date used for prefixing: the upload-supplied value
// when present, otherwise probed from the image bytes. Skipped entirely when
// prefixing is off.
func captureDate(img ImageRecord, s Settings) time.Time {
	if !s.DatePrefix {
		return time.Time{}
	}
	if !img.Taken.IsZero() {
		return img.Taken
	}
	if t, ok := ExtractCaptureDate(img.Data); ok {
		return t
	}
	return time.Time{}
}
