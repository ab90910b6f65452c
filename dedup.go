package renamify

import (
	"bytes"
	"image"

	"github.com/corona10/goimagehash"
)

// dedupThreshold is the maximum Hamming distance between two dHash values
// below which images are considered perceptually identical.
const dedupThreshold = 10

// duplicateScan computes a perceptual dHash per image and reports, for each
// index, the index of the earliest perceptually identical image (or -1).
// Undecodable or unhashable images are treated as unique (graceful
// degradation). The scan only feeds diagnostics; duplicates are flagged for
// user attention, never dropped.
func duplicateScan(images [][]byte) []int {
	dupOf := make([]int, len(images))
	hashes := make([]*goimagehash.ImageHash, len(images))

	for i, data := range images {
		dupOf[i] = -1

		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		hash, err := goimagehash.DifferenceHash(img)
		if err != nil {
			continue
		}
		hashes[i] = hash

		for j := 0; j < i; j++ {
			if hashes[j] == nil {
				continue
			}
			dist, err := hash.Distance(hashes[j])
			if err == nil && dist < dedupThreshold {
				dupOf[i] = j
				break
			}
		}
	}
	return dupOf
}
