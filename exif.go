package renamify

import (
	"bytes"
	"image"
	"time"

	"github.com/bep/imagemeta"
)

// exifDateTags are the capture-date fields in order of preference.
var exifDateTags = []string{"DateTimeOriginal", "DateTime", "DateTimeDigitized"}

// ExtractCaptureDate parses EXIF metadata from raw image bytes and returns
// the capture timestamp. DateTimeOriginal is preferred over DateTime over
// DateTimeDigitized. Returns ok=false when the image carries no usable date.
// Graceful degradation: never returns an error.
func ExtractCaptureDate(data []byte) (time.Time, bool) {
	if len(data) == 0 {
		return time.Time{}, false
	}

	wanted := map[string]bool{}
	for _, tag := range exifDateTags {
		wanted[tag] = true
	}

	dates := map[string]time.Time{}
	err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return wanted[ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if t, ok := tagValueTime(ti.Value); ok {
				dates[ti.Tag] = t
			}
			return nil
		},
	})
	if err != nil || len(dates) == 0 {
		return time.Time{}, false
	}

	for _, tag := range exifDateTags {
		if t, ok := dates[tag]; ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// tagValueTime extracts a timestamp from a tag value. EXIF date tags decode
// either as time.Time or as the raw "YYYY:MM:DD HH:MM:SS" string.
func tagValueTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val, true
	case string:
		for _, layout := range []string{"2006:01:02 15:04:05", "2006:01:02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ImageDimensions reads pixel width and height without decoding the full
// image. Returns zeros when the format is unrecognized.
func ImageDimensions(data []byte) (width, height int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
