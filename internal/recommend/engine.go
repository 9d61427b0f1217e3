// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/nmarchetti/vetrina/internal/cache"
	"github.com/nmarchetti/vetrina/internal/catalog"
	"github.com/nmarchetti/vetrina/internal/metrics"
)

// Engine produces ranked product recommendations. It is stateless between
// calls except for the bounded result cache and is safe for concurrent use.
type Engine struct {
	config *Config
	store  catalog.Store
	cache  cache.Cacher
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine over the given catalog store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store catalog.Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("catalog store is required")
	}

	cacheType := cache.CacheType(cfg.CacheType)
	if cacheType == "" {
		cacheType = cache.CacheTypeLRU
	}

	return &Engine{
		config: cfg,
		store:  store,
		cache: cache.NewCacher(cache.CacheConfig{
			Type:     cacheType,
			TTL:      cfg.CacheTTL,
			Capacity: cfg.CacheMaxEntries,
		}),
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// GetRecommendations dispatches the request to one retrieval strategy,
// scores and ranks the candidates, and returns a bounded result. Collaborator
// failures degrade to an empty result; the only returned error is
// ErrInvalidContext.
func (e *Engine) GetRecommendations(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	req = e.prepareRequest(req)

	if !req.Context.Valid() {
		metrics.RecommendRequestsTotal.WithLabelValues(string(req.Context), "invalid").Inc()
		return nil, fmt.Errorf("%w: %q", ErrInvalidContext, req.Context)
	}

	logger := e.logger.With().
		Str("context", req.Context.String()).
		Str("user_id", req.UserID).
		Int("limit", req.Limit).
		Logger()

	key := cacheKey(req)
	if res := e.checkCache(key); res != nil {
		metrics.CacheHits.Inc()
		metrics.RecommendRequestsTotal.WithLabelValues(req.Context.String(), "cached").Inc()
		logger.Debug().Msg("cache hit")
		return res, nil
	}
	metrics.CacheMisses.Inc()

	recs, algorithm := e.retrieve(ctx, req)
	total := len(recs)

	// Stable sort keeps retrieval order for equal scores, which is the
	// ranking contract for the fixed-score strategies.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > req.Limit {
		recs = recs[:req.Limit]
	}

	res := &Result{
		Recommendations: recs,
		Total:           total,
		Context:         req.Context.String(),
		Algorithm:       algorithm,
		Timestamp:       time.Now().UTC(),
	}

	e.cache.Set(key, res)
	metrics.CacheEntries.Set(float64(e.cache.GetStats().TotalKeys))
	metrics.RecommendRequestsTotal.WithLabelValues(req.Context.String(), "ok").Inc()
	metrics.RecommendDuration.WithLabelValues(req.Context.String()).Observe(time.Since(start).Seconds())
	metrics.RecommendResultCount.WithLabelValues(req.Context.String()).Observe(float64(len(recs)))

	logger.Debug().
		Int("candidates", total).
		Int("returned", len(recs)).
		Str("algorithm", algorithm).
		Msg("recommendation complete")

	return copyResult(res), nil
}

// CacheStats exposes result cache statistics for the observability endpoint.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.GetStats()
}

// CacheHitRate returns the result cache hit rate as a percentage.
func (e *Engine) CacheHitRate() float64 {
	return e.cache.HitRate()
}

// ClearCache drops all cached results.
func (e *Engine) ClearCache() {
	e.cache.Clear()
	metrics.CacheEntries.Set(0)
}

// SweepCache eagerly evicts expired cache entries and returns the number
// removed. The LRU cache otherwise only drops expired entries on access or
// under capacity pressure, so a periodic sweep keeps the entry gauge honest.
func (e *Engine) SweepCache() int {
	sweeper, ok := e.cache.(interface{ CleanupExpired() int })
	if !ok {
		return 0
	}
	removed := sweeper.CleanupExpired()
	metrics.CacheEntries.Set(float64(e.cache.GetStats().TotalKeys))
	return removed
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// prepareRequest applies the context and limit defaults.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.Context == "" {
		req.Context = ContextHome
	}
	if req.Limit <= 0 {
		req.Limit = e.config.DefaultLimit
	}
	if req.Limit > e.config.MaxLimit {
		req.Limit = e.config.MaxLimit
	}
	return req
}

// retrieve dispatches to exactly one strategy. Context validity is checked
// by the caller.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) retrieve(ctx context.Context, req Request) ([]ProductRecommendation, string) {
	switch req.Context {
	case ContextProduct:
		return e.similarCandidates(ctx, req), algorithmSimilarity
	case ContextCategory:
		return e.categoryCandidates(ctx, req), algorithmPopularity
	case ContextCart, ContextCheckout:
		return e.complementaryCandidates(ctx, req), algorithmCoOccurrence
	default:
		return e.homeCandidates(ctx, req), algorithmComposite
	}
}

// checkCache returns a copy of a cached result, or nil on miss. Copies
// protect the cached slice from caller mutation.
func (e *Engine) checkCache(key string) *Result {
	v, ok := e.cache.Get(key)
	if !ok {
		return nil
	}
	res, ok := v.(*Result)
	if !ok {
		return nil
	}
	return copyResult(res)
}

// copyResult returns a shallow copy with its own recommendations slice.
func copyResult(res *Result) *Result {
	recs := make([]ProductRecommendation, len(res.Recommendations))
	copy(recs, res.Recommendations)

	cp := *res
	cp.Recommendations = recs
	return &cp
}

// cacheKey builds the composite cache key for a normalized request.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func cacheKey(req Request) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d",
		req.Context, req.UserID, req.ProductID, req.CategoryID, req.Limit)
}
