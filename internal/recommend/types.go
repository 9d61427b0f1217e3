// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package recommend

import (
	"errors"
	"time"
)

// ErrInvalidContext is returned when a request carries a context value the
// engine does not recognize. It is the only error GetRecommendations returns;
// every other failure degrades to an empty result.
var ErrInvalidContext = errors.New("recommend: invalid context")

// Context selects the retrieval strategy and scoring formula for a request.
type Context string

const (
	// ContextProduct recommends products similar to an anchor product.
	ContextProduct Context = "product"
	// ContextCategory recommends popular products within a category.
	ContextCategory Context = "category"
	// ContextHome combines trending, popular, and personalized candidates.
	ContextHome Context = "home"
	// ContextCart recommends products co-purchased with the cart contents.
	ContextCart Context = "cart"
	// ContextCheckout delegates to the same logic as ContextCart.
	ContextCheckout Context = "checkout"
)

// Valid reports whether the context is one of the recognized values.
func (c Context) Valid() bool {
	switch c {
	case ContextProduct, ContextCategory, ContextHome, ContextCart, ContextCheckout:
		return true
	default:
		return false
	}
}

// String returns the context as a plain string for logging and metrics labels.
func (c Context) String() string {
	return string(c)
}

// Type tags a recommendation with the strategy that produced it.
type Type string

const (
	// TypeSimilar marks candidates sharing the anchor product's category.
	TypeSimilar Type = "similar"
	// TypeComplementary marks candidates co-purchased with cart contents.
	TypeComplementary Type = "complementary"
	// TypeTrending marks recently created candidates with momentum.
	TypeTrending Type = "trending"
	// TypePersonalized marks candidates derived from purchase history.
	TypePersonalized Type = "personalized"
	// TypePopular marks candidates ranked by overall popularity.
	TypePopular Type = "popular"
)

// Reason returns the fixed human-readable justification for this type.
func (t Type) Reason() string {
	switch t {
	case TypeSimilar:
		return "Similar to what you're viewing"
	case TypeComplementary:
		return "Frequently bought together"
	case TypeTrending:
		return "Trending now"
	case TypePersonalized:
		return "Based on your purchases"
	case TypePopular:
		return "Popular right now"
	default:
		return "Recommended for you"
	}
}

// Request describes a single recommendation request. The zero value is a
// valid anonymous home-feed request; normalization applies the defaults.
type Request struct {
	// UserID identifies the requesting user. Empty means anonymous.
	UserID string `json:"user_id,omitempty"`

	// ProductID is the anchor product for the product context.
	ProductID string `json:"product_id,omitempty"`

	// CategoryID is the anchor category for the category context.
	CategoryID string `json:"category_id,omitempty"`

	// Limit is the maximum number of recommendations to return.
	// Defaults to Config.DefaultLimit if zero.
	Limit int `json:"limit,omitempty"`

	// Context selects the retrieval strategy. Defaults to ContextHome.
	Context Context `json:"context,omitempty"`
}

// ProductRecommendation is one ranked entry in a result. The display fields
// are a point-in-time snapshot of the catalog and are not kept in sync.
type ProductRecommendation struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image,omitempty"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`

	// Score is the relevance score in [0,1]. Higher ranks first.
	Score float64 `json:"score"`

	// Reason is the fixed justification string for Type.
	Reason string `json:"reason"`

	// Type tags the strategy that produced this entry.
	Type Type `json:"type"`
}

// Result is the full response for one request.
type Result struct {
	// Recommendations is sorted descending by score and truncated to the
	// request limit.
	Recommendations []ProductRecommendation `json:"recommendations"`

	// Total is the candidate pool size before truncation, after the home
	// composite deduplicates overlapping strategies.
	Total int `json:"total"`

	// Context echoes the resolved request context.
	Context string `json:"context"`

	// Algorithm names the strategy used, for observability only.
	Algorithm string `json:"algorithm"`

	// Timestamp is when the result was generated. A cache hit returns the
	// original generation time, not the lookup time.
	Timestamp time.Time `json:"timestamp"`
}
