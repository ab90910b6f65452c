package renamify

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemoryCachePutGet(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	fp := ComputeFingerprint([]byte("img"), DefaultSettings())
	rec := SuggestionRecord{Name: "beach", Confidence: 0.9, Source: SourceAI}

	if _, ok := c.Get(fp); ok {
		t.Fatal("empty cache returned a record")
	}

	c.Put(fp, rec)
	got, ok := c.Get(fp)
	if !ok {
		t.Fatal("get after put missed")
	}
	if got.Name != rec.Name || got.Confidence != rec.Confidence || got.Source != rec.Source {
		t.Errorf("got %+v, want %+v", got, rec)
	}

	// Overwrite is idempotent.
	rec.Name = "shore"
	c.Put(fp, rec)
	if got, _ := c.Get(fp); got.Name != "shore" {
		t.Errorf("overwrite not applied, got %q", got.Name)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestMemoryCacheClear(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	fp := ComputeFingerprint([]byte("img"), DefaultSettings())
	c.Put(fp, SuggestionRecord{Name: "beach"})
	c.Clear()

	if _, ok := c.Get(fp); ok {
		t.Error("record survived Clear")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}

// Concurrent writers on distinct keys with concurrent readers must not race.
func TestMemoryCacheConcurrent(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fp := Fingerprint(fmt.Sprintf("fp-%d", i))
			c.Put(fp, SuggestionRecord{Name: fmt.Sprintf("name-%d", i)})
			if rec, ok := c.Get(fp); !ok || rec.Name == "" {
				t.Errorf("get after put missed for %s", fp)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 50 {
		t.Errorf("Len() = %d, want 50", c.Len())
	}
}
