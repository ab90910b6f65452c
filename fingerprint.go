package renamify

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is a deterministic content+settings cache key. Two images with
// identical bytes under identical settings always map to the same value;
// changing any settings field yields a different value.
type Fingerprint string

// ComputeFingerprint derives the cache key for one image under the given
// settings. Pure and side-effect free: SHA-256 over the image bytes, combined
// with SHA-256 over the canonical settings encoding.
func ComputeFingerprint(data []byte, s Settings) Fingerprint {
	content := sha256.Sum256(data)
	settings := sha256.Sum256([]byte(s.canonical()))
	return Fingerprint(hex.EncodeToString(content[:]) + "-" + hex.EncodeToString(settings[:]))
}
