// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

// Package cache provides in-memory caching primitives for recommendation results.
package cache

import "time"

// Cacher defines the interface for cache implementations.
// Both Cache (TTL-based) and LRUCache implement this interface,
// allowing for easy switching between caching strategies.
//
// Usage:
//
//	// Unbounded TTL cache
//	var c Cacher = NewTTL(5 * time.Minute)
//
//	// Or a bounded LRU cache when entry count must stay capped
//	var c Cacher = NewLRU(10000, 5 * time.Minute)
//
//	c.Set("key", value)
//	if val, ok := c.Get("key"); ok {
//	    // Use cached value
//	}
type Cacher interface {
	// Get retrieves a value from the cache.
	// Returns the value and true if found and not expired.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with the default TTL.
	Set(key string, value interface{})

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key string, value interface{}, ttl time.Duration)

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all entries from the cache.
	Clear()

	// GetStats returns cache statistics.
	GetStats() Stats

	// HitRate returns the cache hit rate as a percentage.
	HitRate() float64
}

// CacheType represents the type of cache to create.
type CacheType string

const (
	// CacheTypeTTL is a simple TTL-based cache with no entry bound.
	CacheTypeTTL CacheType = "ttl"

	// CacheTypeLRU is a bounded Least Recently Used cache with TTL.
	// Keeps memory flat under high key cardinality (many distinct
	// user/product/limit combinations).
	CacheTypeLRU CacheType = "lru"
)

// CacheConfig holds configuration for creating a cache.
type CacheConfig struct {
	// Type specifies the cache implementation (ttl or lru)
	Type CacheType

	// TTL is the default time-to-live for cache entries
	TTL time.Duration

	// Capacity is the maximum number of entries (only used for LRU)
	Capacity int
}

// NewCacher creates a cache based on the configuration.
// This factory function allows easy switching between cache strategies.
func NewCacher(cfg CacheConfig) Cacher {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	switch cfg.Type {
	case CacheTypeLRU:
		capacity := cfg.Capacity
		if capacity <= 0 {
			capacity = 10000
		}
		return NewLRU(capacity, cfg.TTL)
	default:
		return NewTTL(cfg.TTL)
	}
}

// NewTTL creates a new TTL-based cache (same as New).
// Convenience function for explicit cache type selection.
func NewTTL(ttl time.Duration) Cacher {
	return New(ttl)
}

// NewLRU creates a new bounded LRU cache.
// Convenience function for explicit cache type selection.
func NewLRU(capacity int, ttl time.Duration) Cacher {
	return NewLRUCache(capacity, ttl)
}

// Verify interface implementations at compile time
var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = (*LRUCache)(nil)
)
