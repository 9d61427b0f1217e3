// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package recommend

import (
	"math"
	"time"

	"github.com/nmarchetti/vetrina/internal/catalog"
)

// Scoring constants. The normalizing caps and weights are part of the
// product contract, not configuration.
const (
	// Similarity weights (product context).
	similarityCategoryWeight = 0.5
	similarityTagWeight      = 0.3
	similarityPriceWeight    = 0.2

	// Popularity caps: 100 sales or 1000 views saturate their term.
	popularitySalesWeight  = 0.5
	popularitySalesCap     = 100.0
	popularityViewsWeight  = 0.3
	popularityViewsCap     = 1000.0
	popularityRatingWeight = 0.2

	// Trending reweights popularity with lower caps so newer products
	// saturate faster, plus a recency bonus.
	trendingSalesWeight  = 0.4
	trendingSalesCap     = 50.0
	trendingViewsWeight  = 0.3
	trendingViewsCap     = 500.0
	trendingRatingWeight = 0.2
	trendingWeekBonus    = 0.3
	trendingMonthBonus   = 0.1

	ratingMax = 5.0

	// Fixed scores for strategies that rank by retrieval order.
	complementaryScore = 0.7
	personalizedScore  = 0.8
)

// similarityScore computes how similar a candidate is to the anchor product:
// category match contributes 0.5, tag overlap up to 0.3, price closeness up
// to 0.2. Clamped to [0,1].
func similarityScore(anchor, candidate *catalog.Product) float64 {
	score := 0.0

	if anchor.CategoryID != "" && anchor.CategoryID == candidate.CategoryID {
		score += similarityCategoryWeight
	}

	score += similarityTagWeight * tagOverlap(anchor.Tags, candidate.Tags)

	// Skipped entirely when both prices are zero.
	if maxPrice := math.Max(anchor.Price, candidate.Price); maxPrice > 0 {
		closeness := 1.0 - math.Abs(anchor.Price-candidate.Price)/maxPrice
		score += similarityPriceWeight * closeness
	}

	return clamp01(score)
}

// tagOverlap returns |intersection| / max(|a|, |b|), or 0 when either side
// has no tags.
func tagOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}

	shared := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			shared++
		}
	}

	return float64(shared) / math.Max(float64(len(a)), float64(len(b)))
}

// popularityScore combines capped sales, capped views, and rating.
func popularityScore(p *catalog.Product) float64 {
	score := popularitySalesWeight*math.Min(float64(p.SalesCount)/popularitySalesCap, 1) +
		popularityViewsWeight*math.Min(float64(p.ViewsCount)/popularityViewsCap, 1) +
		popularityRatingWeight*(p.Rating/ratingMax)
	return clamp01(score)
}

// trendingScore is popularity with lower caps plus a recency bonus: +0.3 for
// products created within 7 days, +0.1 within 30 days. The additive bonus
// can push the raw sum above 1, so the result is clamped.
func trendingScore(p *catalog.Product, now time.Time) float64 {
	score := trendingSalesWeight*math.Min(float64(p.SalesCount)/trendingSalesCap, 1) +
		trendingViewsWeight*math.Min(float64(p.ViewsCount)/trendingViewsCap, 1) +
		trendingRatingWeight*(p.Rating/ratingMax)

	age := now.Sub(p.CreatedAt)
	switch {
	case age <= 7*24*time.Hour:
		score += trendingWeekBonus
	case age <= 30*24*time.Hour:
		score += trendingMonthBonus
	}

	return clamp01(score)
}

// clamp01 clamps a score to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
