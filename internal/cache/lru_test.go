// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUBasicOperations(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	_, exists = c.Get("missing")
	if exists {
		t.Error("Expected missing key to not exist")
	}
}

func TestLRUEvictionOrder(t *testing.T) {
	c := NewLRUCache(3, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the least recently used
	c.Get("a")

	c.Set("d", 4)

	if c.Contains("b") {
		t.Error("Expected b to be evicted as least recently used")
	}
	for _, key := range []string{"a", "c", "d"} {
		if !c.Contains(key) {
			t.Errorf("Expected %s to survive eviction", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", c.Len())
	}
}

func TestLRUUpdateMovesToFront(t *testing.T) {
	c := NewLRUCache(2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10) // update, a becomes most recently used
	c.Set("c", 3)  // evicts b

	if c.Contains("b") {
		t.Error("Expected b to be evicted")
	}

	v, ok := c.Get("a")
	if !ok || v != 10 {
		t.Errorf("Expected updated value 10, got %v, %v", v, ok)
	}
}

func TestLRUExpiration(t *testing.T) {
	c := NewLRUCache(10, 50*time.Millisecond)

	c.Set("key1", "value1")

	time.Sleep(80 * time.Millisecond)

	_, exists := c.Get("key1")
	if exists {
		t.Error("Expected key1 to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("Expected expired entry to be removed, len=%d", c.Len())
	}
}

func TestLRUSetWithTTL(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.SetWithTTL("short", "v", 50*time.Millisecond)
	c.Set("long", "v")

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("Expected short-TTL entry to be expired")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("Expected default-TTL entry to survive")
	}
}

func TestLRUDelete(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be deleted")
	}

	// Deleting a missing key is a no-op
	c.Delete("missing")
}

func TestLRUClear(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, len=%d", c.Len())
	}

	// Cache remains usable after Clear
	c.Set("key1", "value1")
	if _, ok := c.Get("key1"); !ok {
		t.Error("Expected cache to accept entries after Clear")
	}
}

func TestLRUCleanupExpired(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.SetWithTTL("a", 1, 10*time.Millisecond)
	c.SetWithTTL("b", 2, 10*time.Millisecond)
	c.Set("c", 3)

	time.Sleep(30 * time.Millisecond)

	removed := c.CleanupExpired()
	if removed != 2 {
		t.Errorf("Expected 2 expired entries removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry remaining, got %d", c.Len())
	}
}

func TestLRUStats(t *testing.T) {
	c := NewLRUCache(2, time.Minute)

	c.Set("a", 1)
	c.Get("a") // hit
	c.Get("x") // miss
	c.Set("b", 2)
	c.Set("c", 3) // evicts a

	stats := c.GetStats()
	if stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
	if stats.TotalKeys != 2 {
		t.Errorf("Expected 2 keys, got %d", stats.TotalKeys)
	}

	hitRate := c.HitRate()
	if hitRate < 49.99 || hitRate > 50.01 {
		t.Errorf("Expected 50%% hit rate, got %.2f", hitRate)
	}
}
