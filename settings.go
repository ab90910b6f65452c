package renamify

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CasingStyle selects the naming convention applied to sanitized tokens.
type CasingStyle string

const (
	CasingKebab CasingStyle = "kebab" // lower-with-hyphens
	CasingSnake CasingStyle = "snake" // lower_with_underscores
	CasingCamel CasingStyle = "camel" // lowerCamelCase
	CasingTitle CasingStyle = "title" // Capitalized Words
)

// Valid reports whether c is one of the four supported styles.
func (c CasingStyle) Valid() bool {
	switch c {
	case CasingKebab, CasingSnake, CasingCamel, CasingTitle:
		return true
	}
	return false
}

// Default naming limits.
const (
	DefaultMaxLength = 60
	DefaultThreshold = 0.4
	DefaultModelID   = "gemini-2.5-flash"
	minAllowedLength = 5
	maxAllowedLength = 255
)

// Settings is the immutable configuration snapshot for one pipeline run.
// Every field participates in the cache fingerprint: changing any of them
// invalidates prior cache entries for unchanged images.
type Settings struct {
	ModelID             string      `yaml:"model"`
	MaxLength           int         `yaml:"max_length"`
	Casing              CasingStyle `yaml:"casing"`
	DatePrefix          bool        `yaml:"date_prefix"`
	OCREnabled          bool        `yaml:"ocr_enabled"`
	ConfidenceThreshold float64     `yaml:"confidence_threshold"`
}

// DefaultSettings returns the settings used when no file is supplied.
func DefaultSettings() Settings {
	return Settings{
		ModelID:             DefaultModelID,
		MaxLength:           DefaultMaxLength,
		Casing:              CasingKebab,
		ConfidenceThreshold: DefaultThreshold,
	}
}

// Validate checks field ranges. A zero-value Settings is not valid; start
// from DefaultSettings instead.
func (s Settings) Validate() error {
	if s.ModelID == "" {
		return fmt.Errorf("settings: model id is empty")
	}
	if !s.Casing.Valid() {
		return fmt.Errorf("settings: unknown casing style %q", s.Casing)
	}
	if s.MaxLength < minAllowedLength || s.MaxLength > maxAllowedLength {
		return fmt.Errorf("settings: max length %d outside [%d, %d]", s.MaxLength, minAllowedLength, maxAllowedLength)
	}
	if s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 1 {
		return fmt.Errorf("settings: confidence threshold %v outside [0, 1]", s.ConfidenceThreshold)
	}
	return nil
}

// canonical returns a stable textual encoding of every field, used for
// fingerprinting. Field order is fixed; booleans and floats are rendered
// deterministically so equal settings always encode identically.
func (s Settings) canonical() string {
	var b strings.Builder
	b.WriteString("model=")
	b.WriteString(s.ModelID)
	b.WriteString(";max_length=")
	b.WriteString(strconv.Itoa(s.MaxLength))
	b.WriteString(";casing=")
	b.WriteString(string(s.Casing))
	b.WriteString(";date_prefix=")
	b.WriteString(strconv.FormatBool(s.DatePrefix))
	b.WriteString(";ocr=")
	b.WriteString(strconv.FormatBool(s.OCREnabled))
	b.WriteString(";threshold=")
	b.WriteString(strconv.FormatFloat(s.ConfidenceThreshold, 'g', -1, 64))
	return b.String()
}

// LoadSettings reads a YAML settings file, filling unset fields from
// DefaultSettings and validating the result.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	if s.Casing == "" {
		s.Casing = CasingKebab
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
