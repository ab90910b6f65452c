package renamify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SuggestionSource records how a suggestion was resolved.
type SuggestionSource string

const (
	SourceAI        SuggestionSource = "ai"
	SourceCache     SuggestionSource = "cache"
	SourceFallback  SuggestionSource = "fallback"
	SourceCancelled SuggestionSource = "cancelled"
)

// SuggestionRecord is one proposed base name with confidence and provenance.
// Immutable once created; cached by fingerprint.
type SuggestionRecord struct {
	Name       string           // proposed base name, pre-sanitization
	Confidence float64          // in [0, 1]
	Tags       []string         // optional semantic tags
	Reasons    string           // model's brief explanation, may be empty
	Source     SuggestionSource // ai or fallback at creation time
	Raw        string           // raw schema payload as returned by the model
	Latency    time.Duration    // wall time of the acquisition
}

// ErrSchemaInvalid reports model output that could not be parsed as the
// suggestion schema, even after the repair pass.
var ErrSchemaInvalid = errors.New("suggestion: response does not match schema")

// suggestionPayload is the wire schema expected from the vision model.
// Only name and confidence are required; everything else is defaulted.
type suggestionPayload struct {
	Name       string   `json:"name"`
	Confidence any      `json:"confidence"`
	Tags       []string `json:"tags"`
	Reasons    string   `json:"reasons"`
}

// ParseSuggestion parses raw model output into a SuggestionRecord. Markdown
// code fences are stripped first. If strict parsing fails, one best-effort
// repair pass extracts the outermost JSON-like substring and retries. Missing
// or mistyped fields are defaulted rather than rejected; only structurally
// unparseable output returns ErrSchemaInvalid.
func ParseSuggestion(raw string) (SuggestionRecord, error) {
	text := stripCodeFences(raw)

	var p suggestionPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		repaired, ok := repairJSON(text)
		if !ok {
			return SuggestionRecord{}, fmt.Errorf("%w: %s", ErrSchemaInvalid, firstLine(raw))
		}
		if err := json.Unmarshal([]byte(repaired), &p); err != nil {
			return SuggestionRecord{}, fmt.Errorf("%w: %s", ErrSchemaInvalid, firstLine(raw))
		}
	}

	rec := SuggestionRecord{
		Name:       strings.TrimSpace(p.Name),
		Confidence: coerceConfidence(p.Confidence),
		Tags:       p.Tags,
		Reasons:    p.Reasons,
		Source:     SourceAI,
		Raw:        raw,
	}
	if rec.Name == "" {
		rec.Name = "unnamed-photo"
	}
	return rec, nil
}

// stripCodeFences removes a surrounding ```json ... ``` (or bare ```) block,
// a common model formatting habit.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	marker := "```"
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
	} else if i := strings.Index(s, marker); i >= 0 {
		s = s[i+len(marker):]
	} else {
		return s
	}
	if j := strings.Index(s, marker); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}

// repairJSON extracts the substring between the first '{' and the last '}'.
// Returns false when no such span exists.
func repairJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// coerceConfidence accepts a number, a numeric string, or garbage, and
// returns a value clamped to [0, 1]. Unusable input defaults to 0.5.
func coerceConfidence(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		if _, err := fmt.Sscanf(n, "%f", &f); err != nil {
			return 0.5
		}
	default:
		return 0.5
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const limit = 120
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}
