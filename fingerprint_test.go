package renamify

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	t.Parallel()

	data := []byte("image bytes")
	s := DefaultSettings()

	if ComputeFingerprint(data, s) != ComputeFingerprint(data, s) {
		t.Error("identical bytes and settings produced different fingerprints")
	}
	if ComputeFingerprint(data, s) == ComputeFingerprint([]byte("other bytes"), s) {
		t.Error("different bytes produced the same fingerprint")
	}
}

// Changing any single settings field must change the fingerprint for the
// same image bytes.
func TestFingerprintSettingsSensitivity(t *testing.T) {
	t.Parallel()

	data := []byte("image bytes")
	base := DefaultSettings()

	variants := map[string]Settings{}
	v := base
	v.ModelID = "gemini-2.5-pro"
	variants["model"] = v
	v = base
	v.MaxLength = 40
	variants["max length"] = v
	v = base
	v.Casing = CasingSnake
	variants["casing"] = v
	v = base
	v.DatePrefix = true
	variants["date prefix"] = v
	v = base
	v.OCREnabled = true
	variants["ocr"] = v
	v = base
	v.ConfidenceThreshold = 0.7
	variants["threshold"] = v

	ref := ComputeFingerprint(data, base)
	for name, s := range variants {
		if ComputeFingerprint(data, s) == ref {
			t.Errorf("changing %s did not change the fingerprint", name)
		}
	}
}
