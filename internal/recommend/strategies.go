// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/nmarchetti/vetrina/internal/catalog"
	"github.com/nmarchetti/vetrina/internal/metrics"
)

// Algorithm names reported in Result.Algorithm, observability only.
const (
	algorithmSimilarity   = "similarity"
	algorithmPopularity   = "popularity"
	algorithmCoOccurrence = "co_occurrence"
	algorithmComposite    = "home_composite"
)

// similarCandidates retrieves products sharing the anchor product's category
// and scores them by similarity. A missing anchor degrades to zero
// candidates, it is not an error.
func (e *Engine) similarCandidates(ctx context.Context, req Request) []ProductRecommendation {
	if req.ProductID == "" {
		return nil
	}

	anchor, err := e.store.GetProduct(ctx, req.ProductID)
	if err != nil {
		e.strategyFailed(req.Context, "anchor product lookup", err)
		return nil
	}

	// Over-fetch one extra slot since the anchor itself is in its category.
	candidates, err := e.store.ListActiveByCategory(ctx, anchor.CategoryID, e.overfetch(req.Limit)+1)
	if err != nil {
		e.strategyFailed(req.Context, "category candidates", err)
		return nil
	}

	recs := make([]ProductRecommendation, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.ID == anchor.ID {
			continue
		}
		recs = append(recs, toRecommendation(c, similarityScore(anchor, c), TypeSimilar))
	}
	return recs
}

// categoryCandidates retrieves active products in the requested category and
// scores them by popularity. The category existence check degrades to zero
// candidates when the anchor is missing or the lookup fails.
func (e *Engine) categoryCandidates(ctx context.Context, req Request) []ProductRecommendation {
	if req.CategoryID == "" {
		return nil
	}

	if _, err := e.store.GetCategory(ctx, req.CategoryID); err != nil {
		e.strategyFailed(req.Context, "anchor category lookup", err)
		return nil
	}

	candidates, err := e.store.ListActiveByCategory(ctx, req.CategoryID, e.overfetch(req.Limit))
	if err != nil {
		e.strategyFailed(req.Context, "category candidates", err)
		return nil
	}

	recs := make([]ProductRecommendation, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		recs = append(recs, toRecommendation(c, popularityScore(c), TypePopular))
	}
	return recs
}

// complementaryCandidates retrieves products historically co-purchased with
// the user's current cart contents. Co-occurrence frequency determines
// retrieval order and therefore which candidates survive truncation; the
// score itself is the fixed complementary constant.
func (e *Engine) complementaryCandidates(ctx context.Context, req Request) []ProductRecommendation {
	if req.UserID == "" {
		return nil
	}

	cartIDs, err := e.store.GetCartProductIDs(ctx, req.UserID)
	if err != nil {
		e.strategyFailed(req.Context, "cart contents", err)
		return nil
	}
	if len(cartIDs) == 0 {
		return nil
	}

	coPurchased, err := e.store.ListCoPurchased(ctx, cartIDs, e.overfetch(req.Limit))
	if err != nil {
		e.strategyFailed(req.Context, "co-purchase counts", err)
		return nil
	}
	if len(coPurchased) == 0 {
		return nil
	}

	ids := make([]string, 0, len(coPurchased))
	for _, cp := range coPurchased {
		ids = append(ids, cp.ProductID)
	}

	products, err := e.store.ListByIDs(ctx, ids)
	if err != nil {
		e.strategyFailed(req.Context, "candidate hydration", err)
		return nil
	}

	byID := make(map[string]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	inCart := make(map[string]struct{}, len(cartIDs))
	for _, id := range cartIDs {
		inCart[id] = struct{}{}
	}

	// Preserve the frequency order from ListCoPurchased.
	recs := make([]ProductRecommendation, 0, len(coPurchased))
	for _, cp := range coPurchased {
		if _, ok := inCart[cp.ProductID]; ok {
			continue
		}
		p, ok := byID[cp.ProductID]
		if !ok || !p.Active() {
			continue
		}
		recs = append(recs, toRecommendation(p, complementaryScore, TypeComplementary))
	}
	return recs
}

// homeCandidates unions trending, popular, and (for logged-in users)
// personalized candidates. The three retrievals are causally independent and
// run concurrently. Duplicates across strategies are collapsed to the
// highest-scoring occurrence.
func (e *Engine) homeCandidates(ctx context.Context, req Request) []ProductRecommendation {
	sources := []func(context.Context, Request) []ProductRecommendation{
		e.trendingCandidates,
		e.popularCandidates,
	}
	if req.UserID != "" {
		sources = append(sources, e.personalizedCandidates)
	}

	results := make([][]ProductRecommendation, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(idx int, fetch func(context.Context, Request) []ProductRecommendation) {
			defer wg.Done()
			results[idx] = fetch(ctx, req)
		}(i, src)
	}
	wg.Wait()

	merged := make([]ProductRecommendation, 0, len(sources)*e.overfetch(req.Limit))
	for _, recs := range results {
		merged = append(merged, recs...)
	}
	return dedupeByProduct(merged)
}

// trendingCandidates scores recently listed products with the trending
// formula.
func (e *Engine) trendingCandidates(ctx context.Context, req Request) []ProductRecommendation {
	candidates, err := e.store.ListRecent(ctx, e.overfetch(req.Limit))
	if err != nil {
		e.strategyFailed(req.Context, "trending candidates", err)
		return nil
	}

	now := time.Now()
	recs := make([]ProductRecommendation, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		recs = append(recs, toRecommendation(c, trendingScore(c, now), TypeTrending))
	}
	return recs
}

// popularCandidates scores the sales-ranked product pool with the popularity
// formula.
func (e *Engine) popularCandidates(ctx context.Context, req Request) []ProductRecommendation {
	candidates, err := e.store.ListPopular(ctx, e.overfetch(req.Limit))
	if err != nil {
		e.strategyFailed(req.Context, "popular candidates", err)
		return nil
	}

	recs := make([]ProductRecommendation, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		recs = append(recs, toRecommendation(c, popularityScore(c), TypePopular))
	}
	return recs
}

// personalizedCandidates derives candidates from the user's completed-order
// history: products sharing a category with past purchases, excluding the
// purchases themselves, at the fixed personalized score.
func (e *Engine) personalizedCandidates(ctx context.Context, req Request) []ProductRecommendation {
	orderIDs, err := e.store.GetCompletedOrderIDs(ctx, req.UserID)
	if err != nil {
		e.strategyFailed(req.Context, "order history", err)
		return nil
	}
	if len(orderIDs) == 0 {
		return nil
	}

	purchasedIDs, err := e.store.GetOrderProductIDs(ctx, orderIDs)
	if err != nil {
		e.strategyFailed(req.Context, "order line items", err)
		return nil
	}
	if len(purchasedIDs) == 0 {
		return nil
	}

	purchased, err := e.store.ListByIDs(ctx, purchasedIDs)
	if err != nil {
		e.strategyFailed(req.Context, "purchase hydration", err)
		return nil
	}

	owned := make(map[string]struct{}, len(purchasedIDs))
	for _, id := range purchasedIDs {
		owned[id] = struct{}{}
	}

	seenCategory := make(map[string]struct{}, len(purchased))
	limit := e.overfetch(req.Limit)
	recs := make([]ProductRecommendation, 0, limit)
	for i := range purchased {
		categoryID := purchased[i].CategoryID
		if categoryID == "" {
			continue
		}
		if _, ok := seenCategory[categoryID]; ok {
			continue
		}
		seenCategory[categoryID] = struct{}{}

		candidates, err := e.store.ListActiveByCategory(ctx, categoryID, limit)
		if err != nil {
			e.strategyFailed(req.Context, "personalized candidates", err)
			continue
		}
		for j := range candidates {
			c := &candidates[j]
			if _, ok := owned[c.ID]; ok {
				continue
			}
			recs = append(recs, toRecommendation(c, personalizedScore, TypePersonalized))
		}
		if len(recs) >= limit {
			break
		}
	}
	return recs
}

// strategyFailed logs a degraded strategy and bumps the error counter.
// Degradation is the contract: strategies contribute zero candidates on
// failure and the call still returns a result.
func (e *Engine) strategyFailed(c Context, stage string, err error) {
	metrics.RecommendStrategyErrors.WithLabelValues(c.String()).Inc()
	e.logger.Warn().
		Str("context", c.String()).
		Str("stage", stage).
		Err(err).
		Msg("strategy degraded to empty candidates")
}

// overfetch returns the candidate retrieval size for a result limit.
func (e *Engine) overfetch(limit int) int {
	return limit * e.config.OverfetchFactor
}

// toRecommendation snapshots a product's display fields into a scored entry.
func toRecommendation(p *catalog.Product, score float64, t Type) ProductRecommendation {
	return ProductRecommendation{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductImage: p.Image(),
		Price:        p.Price,
		Currency:     p.Currency,
		Score:        score,
		Reason:       t.Reason(),
		Type:         t,
	}
}

// dedupeByProduct collapses duplicate product IDs to the highest-scoring
// occurrence, preserving first-seen order for equal scores.
func dedupeByProduct(recs []ProductRecommendation) []ProductRecommendation {
	if len(recs) == 0 {
		return recs
	}

	index := make(map[string]int, len(recs))
	out := make([]ProductRecommendation, 0, len(recs))
	for _, r := range recs {
		if i, ok := index[r.ProductID]; ok {
			if r.Score > out[i].Score {
				out[i] = r
			}
			continue
		}
		index[r.ProductID] = len(out)
		out = append(out, r)
	}
	return out
}
