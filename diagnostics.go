package renamify

// Diagnostic is a single non-fatal evidence point attached to a batch item:
// a missing EXIF date, a fallback name, a perceptual duplicate. Diagnostics
// flag items for user attention; they never exclude an item from the batch.
type Diagnostic struct {
	Source string // "exif", "fallback", "naming", "dedup"
	Detail string // human-readable detail
}

// diag is shorthand for building a Diagnostic.
func diag(source, detail string) Diagnostic {
	return Diagnostic{Source: source, Detail: detail}
}
