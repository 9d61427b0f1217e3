// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory Store used in tests and in seeded development mode.
// Query semantics (ordering, active filtering) match the Postgres store.
type Memory struct {
	mu         sync.RWMutex
	products   map[string]Product
	categories map[string]Category
	carts      map[string][]string // userID -> product IDs
	orders     map[string]order    // orderID -> order
}

type order struct {
	ID         string
	UserID     string
	Status     string
	CreatedAt  time.Time
	ProductIDs []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		products:   make(map[string]Product),
		categories: make(map[string]Category),
		carts:      make(map[string][]string),
		orders:     make(map[string]order),
	}
}

// AddProduct inserts or replaces a product.
func (m *Memory) AddProduct(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// AddCategory inserts or replaces a category.
func (m *Memory) AddCategory(c Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
}

// SetCart replaces a user's cart contents.
func (m *Memory) SetCart(userID string, productIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = append([]string(nil), productIDs...)
}

// AddOrder records an order with its line items.
func (m *Memory) AddOrder(id, userID, status string, createdAt time.Time, productIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[id] = order{
		ID:         id,
		UserID:     userID,
		Status:     status,
		CreatedAt:  createdAt,
		ProductIDs: append([]string(nil), productIDs...),
	}
}

// GetProduct returns a single product by ID.
func (m *Memory) GetProduct(_ context.Context, id string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// GetCategory returns a single category by ID.
func (m *Memory) GetCategory(_ context.Context, id string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// ListActiveByCategory returns active products in a category ordered by
// sales then rating.
func (m *Memory) ListActiveByCategory(_ context.Context, categoryID string, limit int) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range m.products {
		if p.CategoryID == categoryID && p.Active() {
			out = append(out, p)
		}
	}
	sortBySales(out)
	return truncate(out, limit), nil
}

// ListPopular returns active products ordered by sales count.
func (m *Memory) ListPopular(_ context.Context, limit int) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.activeProducts()
	sortBySales(out)
	return truncate(out, limit), nil
}

// ListRecent returns active products ordered by creation time.
func (m *Memory) ListRecent(_ context.Context, limit int) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.activeProducts()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return truncate(out, limit), nil
}

// ListByIDs returns the products for the given IDs.
func (m *Memory) ListByIDs(_ context.Context, ids []string) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetCartProductIDs returns the product IDs currently in a user's cart.
func (m *Memory) GetCartProductIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.carts[userID]...), nil
}

// GetCompletedOrderIDs returns the IDs of a user's completed orders.
func (m *Memory) GetCompletedOrderIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0)
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == "completed" {
			out = append(out, o.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// GetOrderProductIDs returns the distinct product IDs across the given orders.
func (m *Memory) GetOrderProductIDs(_ context.Context, orderIDs []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, oid := range orderIDs {
		o, ok := m.orders[oid]
		if !ok {
			continue
		}
		for _, pid := range o.ProductIDs {
			if !seen[pid] {
				seen[pid] = true
				out = append(out, pid)
			}
		}
	}
	return out, nil
}

// ListCoPurchased returns co-occurrence counts for products bought together
// with the seed products, ordered by count descending.
func (m *Memory) ListCoPurchased(_ context.Context, productIDs []string, limit int) ([]CoPurchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seeds := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		seeds[id] = true
	}

	counts := make(map[string]int)
	for _, o := range m.orders {
		matched := false
		for _, pid := range o.ProductIDs {
			if seeds[pid] {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, pid := range o.ProductIDs {
			if !seeds[pid] {
				counts[pid]++
			}
		}
	}

	out := make([]CoPurchase, 0, len(counts))
	for pid, n := range counts {
		out = append(out, CoPurchase{ProductID: pid, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ProductID < out[j].ProductID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) activeProducts() []Product {
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

func sortBySales(products []Product) {
	sort.Slice(products, func(i, j int) bool {
		if products[i].SalesCount != products[j].SalesCount {
			return products[i].SalesCount > products[j].SalesCount
		}
		if products[i].Rating != products[j].Rating {
			return products[i].Rating > products[j].Rating
		}
		return products[i].ID < products[j].ID
	})
}

func truncate(products []Product, limit int) []Product {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}

// Verify interface implementations at compile time
var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)
