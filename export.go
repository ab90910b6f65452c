package renamify

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidateForExport runs last-line sanity checks before an archive is built:
// at least one included item, no duplicate final names (case-insensitive, to
// catch collisions on case-folding filesystems the engine's case-sensitive
// policy allows), no empty final names. Returns the problems found.
func ValidateForExport(items []BatchItem) []string {
	var errs []string

	var included []BatchItem
	for _, it := range items {
		if it.Include {
			included = append(included, it)
		}
	}
	if len(included) == 0 {
		return []string{"no files selected for export"}
	}

	seen := map[string]bool{}
	var dups []string
	for _, it := range included {
		lower := strings.ToLower(it.Final)
		if seen[lower] {
			dups = append(dups, it.Final)
		}
		seen[lower] = true
	}
	if len(dups) > 0 {
		errs = append(errs, "duplicate filenames: "+strings.Join(dups, ", "))
	}

	var empty []string
	for _, it := range included {
		if strings.TrimSpace(it.Final) == "" {
			empty = append(empty, it.Original)
		}
	}
	if len(empty) > 0 {
		errs = append(errs, "empty filenames for: "+strings.Join(empty, ", "))
	}
	return errs
}

// BuildArchive writes a zip archive with one entry per included item, named
// with its final filename. Item order follows the batch.
func BuildArchive(images []ImageRecord, items []BatchItem) ([]byte, error) {
	if len(images) != len(items) {
		return nil, fmt.Errorf("export: %d images for %d items", len(images), len(items))
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, it := range items {
		if !it.Include {
			continue
		}
		w, err := zw.Create(it.Final)
		if err != nil {
			return nil, fmt.Errorf("export: add %s: %w", it.Final, err)
		}
		if _, err := w.Write(images[i].Data); err != nil {
			return nil, fmt.Errorf("export: write %s: %w", it.Final, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("export: finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// CSVMapping renders the original→final mapping for included items, with
// confidence, tags, reasons and resolution source per row.
func CSVMapping(items []BatchItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"original", "final", "confidence", "tags", "reasons", "source"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, it := range items {
		if !it.Include {
			continue
		}
		row := []string{
			it.Original,
			it.Final,
			strconv.FormatFloat(it.Suggestion.Confidence, 'f', 2, 64),
			strings.Join(it.Suggestion.Tags, ", "),
			it.Suggestion.Reasons,
			string(it.Suggestion.Source),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sessionLog is the JSON session log schema.
type sessionLog struct {
	Timestamp string           `json:"timestamp"`
	RunID     string           `json:"run_id"`
	Settings  sessionSettings  `json:"settings"`
	Stats     sessionStats     `json:"stats"`
	Files     []sessionLogFile `json:"files"`
}

type sessionSettings struct {
	Model               string  `json:"model"`
	MaxLength           int     `json:"max_length"`
	Casing              string  `json:"casing"`
	DatePrefix          bool    `json:"date_prefix"`
	OCREnabled          bool    `json:"ocr_enabled"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

type sessionStats struct {
	Total            int     `json:"total"`
	CacheHits        int     `json:"cache_hits"`
	AICalls          int     `json:"ai_calls"`
	Fallbacks        int     `json:"fallbacks"`
	Cancelled        int     `json:"cancelled"`
	EstimatedCredits float64 `json:"estimated_credits"`
}

type sessionLogFile struct {
	Original   string   `json:"original_name"`
	Final      string   `json:"new_name"`
	Included   bool     `json:"included"`
	Confidence float64  `json:"confidence"`
	Tags       []string `json:"tags,omitempty"`
	Reasons    string   `json:"reasons,omitempty"`
	Source     string   `json:"source"`
	Suffix     int      `json:"collision_suffix,omitempty"`
	LatencyMS  int64    `json:"api_latency_ms,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Notes      []string `json:"notes,omitempty"`
}

// SessionLog renders a detailed JSON record of one run: timestamp, settings,
// aggregate stats, and per-file outcomes including diagnostics.
func SessionLog(res *BatchResult, s Settings) ([]byte, error) {
	log := sessionLog{
		Timestamp: time.Now().Format(time.RFC3339),
		RunID:     res.Stats.RunID,
		Settings: sessionSettings{
			Model:               s.ModelID,
			MaxLength:           s.MaxLength,
			Casing:              string(s.Casing),
			DatePrefix:          s.DatePrefix,
			OCREnabled:          s.OCREnabled,
			ConfidenceThreshold: s.ConfidenceThreshold,
		},
		Stats: sessionStats{
			Total:            res.Stats.Total,
			CacheHits:        res.Stats.CacheHits,
			AICalls:          res.Stats.AICalls,
			Fallbacks:        res.Stats.Fallbacks,
			Cancelled:        res.Stats.Cancelled,
			EstimatedCredits: res.Stats.EstimatedCredits,
		},
	}

	for _, it := range res.Items {
		f := sessionLogFile{
			Original:   it.Original,
			Final:      it.Final,
			Included:   it.Include,
			Confidence: it.Suggestion.Confidence,
			Tags:       it.Suggestion.Tags,
			Reasons:    it.Suggestion.Reasons,
			Source:     string(it.Suggestion.Source),
			Suffix:     it.Suffix,
			LatencyMS:  it.Suggestion.Latency.Milliseconds(),
			Errors:     it.Errors,
		}
		for _, n := range it.Notes {
			f.Notes = append(f.Notes, n.Source+": "+n.Detail)
		}
		log.Files = append(log.Files, f)
	}
	return json.MarshalIndent(log, "", "  ")
}
