// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package catalog

import "time"

// NewSeededMemory returns a Memory store populated with a small demo
// catalog. Used when database.seed_memory_store is enabled so the service
// can run without Postgres during development.
func NewSeededMemory() *Memory {
	m := NewMemory()
	now := time.Now()

	m.AddCategory(Category{ID: "cat-coffee", Name: "Coffee", Status: StatusActive})
	m.AddCategory(Category{ID: "cat-tea", Name: "Tea", Status: StatusActive})
	m.AddCategory(Category{ID: "cat-gear", Name: "Brewing Gear", Status: StatusActive})

	products := []Product{
		{
			ID: "p-espresso", Name: "Espresso Blend 250g", CategoryID: "cat-coffee",
			Price: 12.50, Currency: "EUR", Images: []string{"/img/espresso.jpg"},
			Tags: []string{"coffee", "dark-roast", "arabica"},
			ViewsCount: 1800, SalesCount: 240, Rating: 4.6, Status: StatusActive,
			CreatedAt: now.AddDate(0, -6, 0),
		},
		{
			ID: "p-filter", Name: "Filter Roast 500g", CategoryID: "cat-coffee",
			Price: 14.00, Currency: "EUR", Images: []string{"/img/filter.jpg"},
			Tags: []string{"coffee", "light-roast", "arabica"},
			ViewsCount: 950, SalesCount: 130, Rating: 4.4, Status: StatusActive,
			CreatedAt: now.AddDate(0, -2, 0),
		},
		{
			ID: "p-decaf", Name: "Decaf Blend 250g", CategoryID: "cat-coffee",
			Price: 11.00, Currency: "EUR", Images: []string{"/img/decaf.jpg"},
			Tags: []string{"coffee", "decaf"},
			ViewsCount: 300, SalesCount: 35, Rating: 4.1, Status: StatusActive,
			CreatedAt: now.AddDate(0, 0, -5),
		},
		{
			ID: "p-sencha", Name: "Sencha Green Tea 100g", CategoryID: "cat-tea",
			Price: 9.50, Currency: "EUR", Images: []string{"/img/sencha.jpg"},
			Tags: []string{"tea", "green"},
			ViewsCount: 620, SalesCount: 85, Rating: 4.3, Status: StatusActive,
			CreatedAt: now.AddDate(0, -4, 0),
		},
		{
			ID: "p-earlgrey", Name: "Earl Grey 100g", CategoryID: "cat-tea",
			Price: 8.00, Currency: "EUR", Images: []string{"/img/earlgrey.jpg"},
			Tags: []string{"tea", "black", "bergamot"},
			ViewsCount: 410, SalesCount: 60, Rating: 4.0, Status: StatusActive,
			CreatedAt: now.AddDate(0, 0, -20),
		},
		{
			ID: "p-grinder", Name: "Hand Grinder", CategoryID: "cat-gear",
			Price: 39.90, Currency: "EUR", Images: []string{"/img/grinder.jpg"},
			Tags: []string{"gear", "grinder", "manual"},
			ViewsCount: 1300, SalesCount: 110, Rating: 4.7, Status: StatusActive,
			CreatedAt: now.AddDate(-1, 0, 0),
		},
		{
			ID: "p-v60", Name: "Ceramic Pour-Over Dripper", CategoryID: "cat-gear",
			Price: 21.00, Currency: "EUR", Images: []string{"/img/v60.jpg"},
			Tags: []string{"gear", "pour-over", "ceramic"},
			ViewsCount: 780, SalesCount: 95, Rating: 4.5, Status: StatusActive,
			CreatedAt: now.AddDate(0, -8, 0),
		},
		{
			ID: "p-kettle", Name: "Gooseneck Kettle", CategoryID: "cat-gear",
			Price: 54.00, Currency: "EUR", Images: []string{"/img/kettle.jpg"},
			Tags: []string{"gear", "pour-over", "kettle"},
			ViewsCount: 500, SalesCount: 40, Rating: 4.2, Status: StatusActive,
			CreatedAt: now.AddDate(0, 0, -3),
		},
		{
			ID: "p-retired", Name: "Retired Sampler Box", CategoryID: "cat-coffee",
			Price: 25.00, Currency: "EUR",
			Tags: []string{"coffee", "sampler"},
			ViewsCount: 2000, SalesCount: 400, Rating: 4.8, Status: StatusInactive,
			CreatedAt: now.AddDate(-2, 0, 0),
		},
	}
	for _, p := range products {
		m.AddProduct(p)
	}

	// Orders feeding the co-purchase counts: grinder and dripper are
	// frequently bought with coffee.
	m.AddOrder("o-1", "demo-user", "completed", now.AddDate(0, -3, 0),
		[]string{"p-espresso", "p-grinder"})
	m.AddOrder("o-2", "demo-user", "completed", now.AddDate(0, -1, 0),
		[]string{"p-filter", "p-v60", "p-kettle"})
	m.AddOrder("o-3", "u-2", "completed", now.AddDate(0, -2, 0),
		[]string{"p-espresso", "p-v60"})
	m.AddOrder("o-4", "u-3", "completed", now.AddDate(0, 0, -10),
		[]string{"p-espresso", "p-grinder", "p-sencha"})
	m.AddOrder("o-5", "u-4", "pending", now,
		[]string{"p-decaf"})

	m.SetCart("demo-user", []string{"p-sencha"})

	return m
}
