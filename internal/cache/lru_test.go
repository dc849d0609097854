package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)

	c.Set("u1", "Alice")
	got, ok := c.Get("u1")
	if !ok || got != "Alice" {
		t.Fatalf("Get(u1) = %q, %v", got, ok)
	}

	if _, ok := c.Get("u2"); ok {
		t.Error("Get returned a value for a key never set")
	}
}

func TestOverwriteKeepsSingleEntry(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)

	c.Set("u1", "Alice")
	c.Set("u1", "Alicia")

	if got, _ := c.Get("u1"); got != "Alicia" {
		t.Errorf("Get(u1) = %q after overwrite", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	c.Set("u1", "Alice")
	c.Set("u2", "Bob")
	c.Get("u1") // u2 is now the coldest
	c.Set("u3", "Carol")

	if _, ok := c.Get("u2"); ok {
		t.Error("u2 survived eviction")
	}
	if _, ok := c.Get("u1"); !ok {
		t.Error("u1 was evicted despite being recently used")
	}
	if _, ok := c.Get("u3"); !ok {
		t.Error("u3 missing after insert")
	}
}

func TestExpiry(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("u1", "Alice")
	c.Set("u2", "Bob")

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	if _, ok := c.Get("u1"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("u1"); ok {
		t.Error("entry still readable past its TTL")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired removed %d entries, want 1 (u1 already dropped on Get)", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d after expiry sweep, want 0", c.Size())
	}
}

func TestDelete(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	c.Set("k", 7)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Get found a deleted key")
	}
	c.Delete("k") // deleting twice is fine
}
