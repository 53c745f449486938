package cache

import (
	"strconv"
	"testing"
	"time"
)

func TestLRUCacheGetSetDelete(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Fatal("empty cache should miss")
	}

	c.Set("a", "1")
	if v, found := c.Get("a"); !found || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, found)
	}

	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" {
		t.Fatalf("overwritten value = %q, want 2", v)
	}
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}

	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Fatal("deleted key should miss")
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)
	for i := 0; i < 3; i++ {
		c.Set(strconv.Itoa(i), i)
	}

	// Touch "0" so "1" becomes the eviction candidate.
	c.Get("0")
	c.Set("3", 3)

	if _, found := c.Get("1"); found {
		t.Fatal("least recently used entry should be evicted")
	}
	for _, key := range []string{"0", "2", "3"} {
		if _, found := c.Get(key); !found {
			t.Fatalf("key %q should survive eviction", key)
		}
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[int](10, -time.Second)
	c.Set("stale", 1)

	if _, found := c.Get("stale"); found {
		t.Fatal("expired entry should miss")
	}
	if c.Size() != 0 {
		t.Fatalf("Size() = %d after expired read, want 0", c.Size())
	}
}

func TestCleanExpired(t *testing.T) {
	stale := NewLRUCache[int](10, -time.Second)
	stale.Set("a", 1)
	stale.Set("b", 2)
	fresh := NewLRUCache[int](10, time.Minute)
	fresh.Set("c", 3)

	if n := stale.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired() = %d, want 2", n)
	}
	if n := fresh.CleanExpired(); n != 0 {
		t.Fatalf("CleanExpired() = %d, want 0", n)
	}
}
