// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

/*
Package cache provides thread-safe in-memory caching with TTL support.

Recommendation responses are expensive to assemble (several catalog queries
plus scoring) and perfectly cacheable for a few minutes, so the engine caches
them here keyed by the full request shape.

# Overview

Two implementations share the Cacher interface:

  - Cache: unbounded map with TTL expiration (lazy plus a 5-minute
    background sweep)
  - LRUCache: bounded doubly-linked-list LRU with TTL, used for the
    recommendation result cache where key cardinality is driven by
    user/product/limit combinations

# Usage

	c := cache.NewLRU(10000, 5*time.Minute)

	c.Set("home|u1|||10", result)
	if v, ok := c.Get("home|u1|||10"); ok {
	    return v.(*recommend.Result)
	}

Hit/miss/eviction counters are exposed through GetStats and surfaced on the
cache stats endpoint and Prometheus metrics.

# Thread Safety

All operations on both implementations are safe for concurrent use.
*/
package cache
