package renamify

import "sync"

// SuggestionCache maps fingerprints to resolved suggestion records. The cache
// lives for a session and is bounded by the number of distinct images ever
// processed, so no TTL or eviction is required. Implementations must make Put
// atomic with respect to concurrent Gets of the same key.
type SuggestionCache interface {
	Get(fp Fingerprint) (SuggestionRecord, bool)
	Put(fp Fingerprint, rec SuggestionRecord)
	Clear()
	Len() int
}

// MemoryCache is an in-memory SuggestionCache safe for concurrent use.
// Concurrent per-image tasks write distinct fingerprints, so the RWMutex is
// only contended on the map itself, never on a key.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Fingerprint]SuggestionRecord
}

// NewMemoryCache creates an empty ready-to-use cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[Fingerprint]SuggestionRecord)}
}

// Get returns the record stored under fp, if any.
func (c *MemoryCache) Get(fp Fingerprint) (SuggestionRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.entries[fp]
	return rec, ok
}

// Put stores rec under fp, overwriting any previous record (idempotent).
func (c *MemoryCache) Put(fp Fingerprint, rec SuggestionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fp] = rec
}

// Clear drops every entry. Called on explicit user reset, or defensively when
// settings change in a way not captured by the fingerprint.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Fingerprint]SuggestionRecord)
}

// Len returns the number of cached records.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
