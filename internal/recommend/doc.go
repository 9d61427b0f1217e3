// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

// Package recommend implements the heuristic product recommendation engine.
//
// The engine dispatches each request to exactly one retrieval strategy based
// on the request context (product page, category page, home feed, cart,
// checkout), scores the retrieved candidates with context-specific formulas,
// ranks them, and returns a bounded list. Results are cached in a bounded
// LRU with a TTL.
//
// Collaborator failures never surface to callers: a failing catalog query
// degrades the owning strategy to zero candidates and the call still returns
// a (possibly empty) result. The only caller-visible error is
// ErrInvalidContext.
package recommend
