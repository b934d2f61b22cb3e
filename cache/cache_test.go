package cache

import (
	"fmt"
	"testing"

	"github.com/use-agent/deepfetch/models"
)

func TestKey_Distinguishing(t *testing.T) {
	base := Key("https://example.com", "text", "readability", "")
	tests := []struct {
		name string
		key  string
	}{
		{"url", Key("https://example.com/other", "text", "readability", "")},
		{"format", Key("https://example.com", "markdown", "readability", "")},
		{"mode", Key("https://example.com", "text", "raw", "")},
		{"selector", Key("https://example.com", "text", "readability", "article")},
	}
	for _, tt := range tests {
		if tt.key == base {
			t.Errorf("%s change produced an identical key", tt.name)
		}
	}

	if again := Key("https://example.com", "text", "readability", ""); again != base {
		t.Error("identical inputs must produce identical keys")
	}
}

func TestCache_GetSet(t *testing.T) {
	c := New(10)
	resp := &models.FetchResponse{Success: true, Content: "cached content"}

	key := Key("https://example.com", "text", "readability", "")
	c.Set(key, resp)

	got, hit := c.Get(key, 60_000)
	if !hit {
		t.Fatal("expected a cache hit")
	}
	if got.Content != "cached content" {
		t.Errorf("Content = %q", got.Content)
	}
}

func TestCache_MaxAgeZeroDisablesLookup(t *testing.T) {
	c := New(10)
	key := Key("https://example.com", "text", "readability", "")
	c.Set(key, &models.FetchResponse{Success: true})

	if _, hit := c.Get(key, 0); hit {
		t.Error("maxAge 0 must bypass the cache")
	}
}

func TestCache_Miss(t *testing.T) {
	c := New(10)
	if _, hit := c.Get("absent", 60_000); hit {
		t.Error("unexpected hit on an empty cache")
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New(3)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("key-%d", i), &models.FetchResponse{Success: true})
	}

	c.mu.RLock()
	size := len(c.store)
	c.mu.RUnlock()
	if size > 3 {
		t.Errorf("store size = %d, want capacity respected", size)
	}
}
