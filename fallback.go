package renamify

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Fallback confidence levels: heuristic names are usable but weak evidence.
const (
	fallbackConfidence = 0.3
	unknownConfidence  = 0.1
)

// FallbackSuggestion produces a locally computed substitute name when the AI
// path is unusable. Preference order: OCR tokens, then a dominant-color and
// brightness read of the pixels, then a generic placeholder. Never fails.
func FallbackSuggestion(data []byte, ocrTokens []string) SuggestionRecord {
	if tokens := FilterTokens(ocrTokens); len(tokens) > 0 {
		const maxNameTokens = 3
		if len(tokens) > maxNameTokens {
			tokens = tokens[:maxNameTokens]
		}
		return SuggestionRecord{
			Name:       strings.Join(tokens, "-"),
			Confidence: fallbackConfidence,
			Tags:       tokens,
			Reasons:    "derived from text found in the image",
			Source:     SourceFallback,
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return SuggestionRecord{
			Name:       "unnamed-photo",
			Confidence: unknownConfidence,
			Tags:       []string{"photo"},
			Reasons:    "could not analyze image",
			Source:     SourceFallback,
		}
	}

	tone, color := dominantTone(img)
	return SuggestionRecord{
		Name:       tone + "-" + color + "-photo",
		Confidence: fallbackConfidence,
		Tags:       []string{tone, color, "photo"},
		Reasons:    "derived from dominant color (AI analysis unavailable)",
		Source:     SourceFallback,
	}
}

// dominantTone samples the image on a coarse grid and reports brightness
// ("bright"/"dark") and the strongest channel ("red"/"green"/"blue"/"neutral").
func dominantTone(img image.Image) (tone, color string) {
	bounds := img.Bounds()
	const grid = 50

	stepX := bounds.Dx() / grid
	if stepX < 1 {
		stepX = 1
	}
	stepY := bounds.Dy() / grid
	if stepY < 1 {
		stepY = 1
	}

	var rSum, gSum, bSum, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
			n++
		}
	}
	if n == 0 {
		return "dark", "neutral"
	}

	rAvg, gAvg, bAvg := rSum/n, gSum/n, bSum/n
	switch {
	case rAvg > gAvg && rAvg > bAvg:
		color = "red"
	case gAvg > rAvg && gAvg > bAvg:
		color = "green"
	case bAvg > rAvg && bAvg > gAvg:
		color = "blue"
	default:
		color = "neutral"
	}

	tone = "dark"
	if (rAvg+gAvg+bAvg)/3 > 128 {
		tone = "bright"
	}
	return tone, color
}
