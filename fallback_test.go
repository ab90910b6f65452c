package renamify

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// pngBytes encodes a solid-color PNG for tests.
func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFallbackSuggestionFromOCRTokens(t *testing.T) {
	t.Parallel()

	rec := FallbackSuggestion(nil, []string{"Grand", "Hotel", "Budapest", "the", "Lobby"})
	if rec.Name != "grand-hotel-budapest" {
		t.Errorf("Name = %q, want grand-hotel-budapest", rec.Name)
	}
	if rec.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", rec.Source)
	}
	if rec.Confidence != fallbackConfidence {
		t.Errorf("Confidence = %v, want %v", rec.Confidence, fallbackConfidence)
	}
}

func TestFallbackSuggestionDominantColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		col  color.Color
		want string
	}{
		{"bright blue", color.RGBA{100, 140, 250, 255}, "bright-blue-photo"},
		{"dark red", color.RGBA{100, 10, 10, 255}, "dark-red-photo"},
		{"bright green", color.RGBA{80, 230, 80, 255}, "bright-green-photo"},
		{"dark neutral", color.RGBA{40, 40, 40, 255}, "dark-neutral-photo"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := FallbackSuggestion(pngBytes(t, 60, 60, tt.col), nil)
			if rec.Name != tt.want {
				t.Errorf("Name = %q, want %q", rec.Name, tt.want)
			}
			if rec.Source != SourceFallback {
				t.Errorf("Source = %q, want fallback", rec.Source)
			}
		})
	}
}

func TestFallbackSuggestionUndecodable(t *testing.T) {
	t.Parallel()

	rec := FallbackSuggestion([]byte("definitely not an image"), nil)
	if rec.Name != "unnamed-photo" {
		t.Errorf("Name = %q, want unnamed-photo", rec.Name)
	}
	if rec.Confidence != unknownConfidence {
		t.Errorf("Confidence = %v, want %v", rec.Confidence, unknownConfidence)
	}
	if rec.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", rec.Source)
	}
}
