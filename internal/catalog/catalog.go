// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

// Package catalog provides read-only access to the storefront's product
// catalog, carts and order history. The recommendation engine consumes this
// package through the Store interface and never touches SQL directly.
package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a product or category does not exist.
var ErrNotFound = errors.New("catalog: not found")

// ProductStatus values for Product.Status.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Product is a catalog product with the counters the scoring
// heuristics need.
type Product struct {
	ID         string
	Name       string
	CategoryID string
	Price      float64
	Currency   string
	Images     []string
	Tags       []string
	ViewsCount int
	SalesCount int
	Rating     float64
	Status     string
	CreatedAt  time.Time
}

// Active reports whether the product is visible to shoppers.
func (p *Product) Active() bool {
	return p.Status == StatusActive
}

// Image returns the primary product image, or empty string if none.
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Category is a product category.
type Category struct {
	ID     string
	Name   string
	Status string
}

// CoPurchase is a product that appeared in orders alongside one or more
// seed products, with the number of co-occurrences.
type CoPurchase struct {
	ProductID string
	Count     int
}

// Store is the read-only query surface the engine depends on.
// Implementations: Postgres (production), Memory (tests and seeded dev
// mode), Breaker (circuit-breaker decorator over either).
type Store interface {
	// GetProduct returns a single product by ID.
	// Returns ErrNotFound if the product does not exist.
	GetProduct(ctx context.Context, id string) (*Product, error)

	// GetCategory returns a single category by ID.
	// Returns ErrNotFound if the category does not exist.
	GetCategory(ctx context.Context, id string) (*Category, error)

	// ListActiveByCategory returns active products in a category,
	// ordered by sales count then rating, both descending.
	ListActiveByCategory(ctx context.Context, categoryID string, limit int) ([]Product, error)

	// ListPopular returns active products ordered by sales count descending.
	ListPopular(ctx context.Context, limit int) ([]Product, error)

	// ListRecent returns active products ordered by creation time descending.
	ListRecent(ctx context.Context, limit int) ([]Product, error)

	// ListByIDs returns the products for the given IDs. Missing IDs are
	// silently skipped; order is not guaranteed.
	ListByIDs(ctx context.Context, ids []string) ([]Product, error)

	// GetCartProductIDs returns the product IDs currently in a user's cart.
	GetCartProductIDs(ctx context.Context, userID string) ([]string, error)

	// GetCompletedOrderIDs returns the IDs of a user's completed orders.
	GetCompletedOrderIDs(ctx context.Context, userID string) ([]string, error)

	// GetOrderProductIDs returns the distinct product IDs across the given
	// orders.
	GetOrderProductIDs(ctx context.Context, orderIDs []string) ([]string, error)

	// ListCoPurchased returns products that appear in orders containing any
	// of the seed products, with co-occurrence counts, ordered by count
	// descending. The seed products themselves are excluded.
	ListCoPurchased(ctx context.Context, productIDs []string, limit int) ([]CoPurchase, error)
}
