package renamify

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// PlaceholderName substitutes for names that sanitize down to nothing.
const PlaceholderName = "untitled"

// truncateWindow is how far truncation backs off looking for a separator,
// so a cut lands on a token boundary instead of mid-token.
const truncateWindow = 10

// reservedNames are device names that are not usable as filenames on common
// target filesystems. Checked case-insensitively against the name body.
var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// NameRequest is one naming-engine input: the original filename (for its
// extension), the raw suggested base name, and the optional capture date.
type NameRequest struct {
	Original string    // original filename, extension preserved in the output
	RawBase  string    // raw suggestion, pre-sanitization
	Taken    time.Time // EXIF capture date; zero means unavailable
	Include  bool      // excluded items are named but not uniqueness-reserved
}

// NamingResult is the final per-item outcome after batch-wide policy and
// uniqueness resolution.
type NamingResult struct {
	Original string
	Final    string       // final filename including extension
	Include  bool
	Suffix   int          // collision suffix applied; 0 = none
	Errors   []string     // policy violations, surfaced but non-fatal to the batch
	Notes    []Diagnostic // non-fatal diagnostics
}

// RenameBatch transforms a batch of raw base names into a final,
// policy-compliant, collision-free set. It is a pure function of its inputs:
// per-item sanitize → case → date prefix → truncate → validate, then one
// uniqueness pass across the batch in input order. First occurrence of a name
// keeps the unsuffixed form; later occurrences get -1, -2, … before the
// extension. Comparison is case-sensitive for determinism. Reordering inputs
// may therefore reassign suffixes; that order-sensitivity is deliberate.
func RenameBatch(reqs []NameRequest, s Settings) []NamingResult {
	results := make([]NamingResult, len(reqs))
	for i, req := range reqs {
		results[i] = composeName(req, s)
	}

	// Uniqueness must run after every individual name is computed; it is
	// inherently batch-scoped.
	seen := make(map[string]bool, len(reqs))
	counters := make(map[string]int)
	for i := range results {
		if !results[i].Include {
			continue
		}
		final := results[i].Final
		if !seen[final] {
			seen[final] = true
			continue
		}

		ext := filepath.Ext(final)
		stem := strings.TrimSuffix(final, ext)
		counter := counters[final]
		if counter == 0 {
			counter = 1
		}
		for {
			candidate := fmt.Sprintf("%s-%d%s", stem, counter, ext)
			if !seen[candidate] {
				seen[candidate] = true
				counters[final] = counter + 1
				results[i].Final = candidate
				results[i].Suffix = counter
				break
			}
			counter++
		}
	}
	return results
}

// composeName runs the per-item stages of the naming policy.
func composeName(req NameRequest, s Settings) NamingResult {
	res := NamingResult{Original: req.Original, Include: req.Include}
	ext := filepath.Ext(req.Original)

	body := ApplyCasing(Sanitize(req.RawBase), s.Casing)
	if body == "" {
		body = PlaceholderName
		res.Notes = append(res.Notes, diag("naming", "name empty after sanitization, substituted placeholder"))
	}

	if s.DatePrefix {
		if req.Taken.IsZero() {
			res.Notes = append(res.Notes, diag("exif", "date prefix requested but no capture date available"))
		} else {
			body = req.Taken.Format("20060102") + "_" + body
		}
	}

	budget := s.MaxLength - utf8.RuneCountInString(ext)
	if budget <= 0 {
		// Max length cannot even fit the extension; nothing sensible to
		// truncate to. Hard per-item error, name left untruncated.
		res.Errors = append(res.Errors,
			fmt.Sprintf("max length %d is shorter than extension %q", s.MaxLength, ext))
	} else {
		body = TruncateName(body, budget)
	}

	res.Errors = append(res.Errors, ValidateName(body, s)...)
	res.Final = body + ext
	return res
}

// Sanitize reduces raw text to separator-joined tokens from the allowed
// character set (letters, digits, hyphen, underscore). A trailing
// extension-like suffix is stripped, camelCase boundaries split, every run
// of disallowed characters collapses to one separator, and leading/trailing
// separators are trimmed. Already-conformant input passes through unchanged
// apart from casing.
func Sanitize(raw string) string {
	raw = stripExtension(raw)
	tokens := tokenize(raw)
	return strings.Join(tokens, " ")
}

var extensionRe = regexp.MustCompile(`\.[A-Za-z0-9]{1,5}$`)

// stripExtension drops a trailing ".ext" the model sometimes appends despite
// instructions.
func stripExtension(s string) string {
	return extensionRe.ReplaceAllString(s, "")
}

// tokenize splits raw text into alphanumeric tokens. Splits occur on any
// non-alphanumeric run and on lower-to-upper camelCase boundaries.
func tokenize(raw string) []string {
	var tokens []string
	var cur strings.Builder
	var prev rune

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				flush()
			}
			cur.WriteRune(r)
		default:
			flush()
		}
		prev = r
	}
	flush()
	return tokens
}

// ApplyCasing renders a sanitized token sequence in the configured style.
// Casing operates on tokens, not raw text, so results are stable regardless
// of the model's original formatting.
func ApplyCasing(sanitized string, style CasingStyle) string {
	tokens := strings.Fields(sanitized)
	if len(tokens) == 0 {
		return ""
	}

	switch style {
	case CasingSnake:
		return strings.ToLower(strings.Join(tokens, "_"))
	case CasingCamel:
		var b strings.Builder
		b.WriteString(strings.ToLower(tokens[0]))
		for _, t := range tokens[1:] {
			b.WriteString(capitalize(t))
		}
		return b.String()
	case CasingTitle:
		capped := make([]string, len(tokens))
		for i, t := range tokens {
			capped[i] = capitalize(t)
		}
		return strings.Join(capped, " ")
	default: // kebab
		return strings.ToLower(strings.Join(tokens, "-"))
	}
}

func capitalize(t string) string {
	if t == "" {
		return t
	}
	runes := []rune(strings.ToLower(t))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// TruncateName enforces the length budget on a name body. Lengths count
// runes, never bytes, so a multi-byte letter is never split. The cut backs
// off to a separator when one exists within the last truncateWindow runes,
// so tokens are not split mid-way; with no nearby separator the cut is hard.
// Trailing separators are always trimmed.
func TruncateName(body string, budget int) string {
	runes := []rune(body)
	if len(runes) <= budget {
		return body
	}

	cut := runes[:budget]
	if strings.ContainsRune("-_ ", runes[budget]) {
		// The cut already lands on a token boundary.
		return strings.TrimRight(string(cut), "-_ ")
	}
	if idx := lastSeparator(cut); idx >= budget-truncateWindow && idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(string(cut), "-_ ")
}

// lastSeparator returns the index of the last separator rune, or -1.
func lastSeparator(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '-' || runes[i] == '_' || runes[i] == ' ' {
			return i
		}
	}
	return -1
}

// ValidateName checks a final name body against policy. Violations are
// returned for surfacing on the NamingResult; they do not abort the batch.
func ValidateName(body string, s Settings) []string {
	var errs []string

	if strings.TrimSpace(body) == "" {
		errs = append(errs, "name is empty")
		return errs
	}
	if utf8.RuneCountInString(body) > s.MaxLength {
		errs = append(errs, fmt.Sprintf("name exceeds maximum length %d", s.MaxLength))
	}
	if bad := disallowedChars(body, s.Casing); bad != "" {
		errs = append(errs, fmt.Sprintf("name contains disallowed characters: %s", bad))
	}
	if reservedNames[strings.ToLower(body)] {
		errs = append(errs, fmt.Sprintf("%q is a reserved device name", body))
	}
	return errs
}

// disallowedChars returns the characters of body outside the allowed set.
// Title style additionally permits spaces.
func disallowedChars(body string, style CasingStyle) string {
	var bad []rune
	for _, r := range body {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
		case r == '-' || r == '_':
		case r == ' ' && style == CasingTitle:
		default:
			bad = append(bad, r)
		}
	}
	return string(bad)
}

// FindAndReplace applies a literal or regex find/replace over a list of
// names. An invalid regex keeps every name unchanged rather than failing.
func FindAndReplace(names []string, find, replace string, useRegex bool) []string {
	out := make([]string, len(names))
	if useRegex {
		re, err := regexp.Compile(find)
		if err != nil {
			copy(out, names)
			return out
		}
		for i, n := range names {
			out[i] = re.ReplaceAllString(n, replace)
		}
		return out
	}
	for i, n := range names {
		out[i] = strings.ReplaceAll(n, find, replace)
	}
	return out
}
