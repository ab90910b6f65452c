package renamify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettingsValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty model", func(s *Settings) { s.ModelID = "" }},
		{"bad casing", func(s *Settings) { s.Casing = "shouty" }},
		{"max length too small", func(s *Settings) { s.MaxLength = 2 }},
		{"max length too large", func(s *Settings) { s.MaxLength = 10000 }},
		{"threshold negative", func(s *Settings) { s.ConfidenceThreshold = -0.1 }},
		{"threshold above one", func(s *Settings) { s.ConfidenceThreshold = 1.5 }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := DefaultSettings()
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("Validate accepted invalid settings")
			}
		})
	}
}

func TestSettingsCanonicalStable(t *testing.T) {
	t.Parallel()

	a := DefaultSettings()
	b := DefaultSettings()
	if a.canonical() != b.canonical() {
		t.Error("equal settings encode differently")
	}

	b.DatePrefix = true
	if a.canonical() == b.canonical() {
		t.Error("different settings encode identically")
	}
}

func TestLoadSettings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "model: gemini-2.5-pro\ncasing: snake\nmax_length: 40\ndate_prefix: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.ModelID != "gemini-2.5-pro" || s.Casing != CasingSnake || s.MaxLength != 40 || !s.DatePrefix {
		t.Errorf("loaded settings = %+v", s)
	}
	// Unset fields keep defaults.
	if s.ConfidenceThreshold != DefaultThreshold {
		t.Errorf("threshold = %v, want default %v", s.ConfidenceThreshold, DefaultThreshold)
	}
}

func TestLoadSettingsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("casing: shouty\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Error("LoadSettings accepted an unknown casing style")
	}

	if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadSettings accepted a missing file")
	}
}
