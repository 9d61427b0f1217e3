// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nmarchetti/vetrina/internal/catalog"
)

func newTestEngine(t *testing.T, store catalog.Store) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return e
}

func TestGetRecommendationsDefaults(t *testing.T) {
	e := newTestEngine(t, catalog.NewMemory())

	res, err := e.GetRecommendations(context.Background(), Request{})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if res.Context != "home" {
		t.Errorf("expected default context home, got %q", res.Context)
	}
	if len(res.Recommendations) != 0 || res.Total != 0 {
		t.Errorf("expected empty result from empty store, got %+v", res)
	}
}

func TestGetRecommendationsInvalidContext(t *testing.T) {
	e := newTestEngine(t, catalog.NewMemory())

	_, err := e.GetRecommendations(context.Background(), Request{Context: "wishlist"})
	if !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected ErrInvalidContext, got %v", err)
	}
}

func TestCategoryContextOrdering(t *testing.T) {
	m := catalog.NewMemory()
	m.AddCategory(catalog.Category{ID: "cat-1", Name: "Coffee", Status: catalog.StatusActive})
	for id, sales := range map[string]int{"p-10": 10, "p-80": 80, "p-5": 5, "p-200": 200, "p-1": 1} {
		m.AddProduct(catalog.Product{ID: id, CategoryID: "cat-1", SalesCount: sales, Status: catalog.StatusActive})
	}
	e := newTestEngine(t, m)

	res, err := e.GetRecommendations(context.Background(),
		Request{Context: ContextCategory, CategoryID: "cat-1", Limit: 3})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(res.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(res.Recommendations))
	}
	if res.Recommendations[0].ProductID != "p-200" {
		t.Errorf("expected highest-sales product first, got %s", res.Recommendations[0].ProductID)
	}
	assertSortedDescending(t, res.Recommendations)
	if res.Total != 5 {
		t.Errorf("expected total 5 before truncation, got %d", res.Total)
	}
	for _, r := range res.Recommendations {
		if r.Type != TypePopular {
			t.Errorf("expected popular type, got %s", r.Type)
		}
	}
}

func TestProductContextMissingAnchor(t *testing.T) {
	e := newTestEngine(t, catalog.NewMemory())

	res, err := e.GetRecommendations(context.Background(),
		Request{Context: ContextProduct, ProductID: "missing-id"})
	if err != nil {
		t.Fatalf("missing anchor must degrade, not error: %v", err)
	}
	if len(res.Recommendations) != 0 || res.Total != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestProductContextSimilar(t *testing.T) {
	m := catalog.NewMemory()
	m.AddProduct(catalog.Product{
		ID: "anchor", CategoryID: "cat-1", Price: 10,
		Tags: []string{"coffee", "dark"}, Status: catalog.StatusActive,
	})
	m.AddProduct(catalog.Product{
		ID: "close", CategoryID: "cat-1", Price: 10,
		Tags: []string{"coffee", "dark"}, Status: catalog.StatusActive,
	})
	m.AddProduct(catalog.Product{
		ID: "far", CategoryID: "cat-1", Price: 100,
		Tags: []string{"tea"}, Status: catalog.StatusActive,
	})
	e := newTestEngine(t, m)

	res, err := e.GetRecommendations(context.Background(),
		Request{Context: ContextProduct, ProductID: "anchor"})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	for _, r := range res.Recommendations {
		if r.ProductID == "anchor" {
			t.Error("anchor product must not recommend itself")
		}
		if r.Type != TypeSimilar {
			t.Errorf("expected similar type, got %s", r.Type)
		}
	}
	if len(res.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(res.Recommendations))
	}
	if res.Recommendations[0].ProductID != "close" {
		t.Errorf("expected closest match first, got %s", res.Recommendations[0].ProductID)
	}
	assertSortedDescending(t, res.Recommendations)
}

func TestHomeAnonymousHasNoPersonalized(t *testing.T) {
	m := catalog.NewSeededMemory()
	e := newTestEngine(t, m)

	res, err := e.GetRecommendations(context.Background(), Request{Context: ContextHome, Limit: 10})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(res.Recommendations) == 0 {
		t.Fatal("expected recommendations from seeded store")
	}
	for _, r := range res.Recommendations {
		if r.Type == TypePersonalized {
			t.Errorf("anonymous home feed must not contain personalized entries: %+v", r)
		}
		if r.Type != TypeTrending && r.Type != TypePopular {
			t.Errorf("unexpected type %s in anonymous home feed", r.Type)
		}
	}
	assertSortedDescending(t, res.Recommendations)
}

func TestHomeLoggedInIncludesPersonalized(t *testing.T) {
	m := catalog.NewMemory()
	m.AddProduct(catalog.Product{ID: "owned", CategoryID: "cat-1", Status: catalog.StatusActive})
	m.AddProduct(catalog.Product{ID: "suggested", CategoryID: "cat-1", Status: catalog.StatusActive})
	m.AddOrder("o-1", "u-1", "completed", time.Now(), []string{"owned"})
	e := newTestEngine(t, m)

	res, err := e.GetRecommendations(context.Background(),
		Request{Context: ContextHome, UserID: "u-1", Limit: 10})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}

	var personalized []ProductRecommendation
	for _, r := range res.Recommendations {
		if r.Type == TypePersonalized {
			personalized = append(personalized, r)
		}
		if r.ProductID == "owned" && r.Type == TypePersonalized {
			t.Error("already-purchased product must be excluded from personalized entries")
		}
	}
	if len(personalized) == 0 {
		t.Fatal("expected personalized entries for a user with purchase history")
	}
	for _, r := range personalized {
		if r.Score != personalizedScore {
			t.Errorf("expected fixed personalized score %f, got %f", personalizedScore, r.Score)
		}
	}
}

func TestHomeDedupesAcrossStrategies(t *testing.T) {
	m := catalog.NewMemory()
	// Both popular (high sales) and trending (created now), so it appears in
	// two candidate pools before deduplication.
	m.AddProduct(catalog.Product{
		ID: "hot", CategoryID: "cat-1", SalesCount: 300, ViewsCount: 2000,
		Rating: 5, CreatedAt: time.Now(), Status: catalog.StatusActive,
	})
	e := newTestEngine(t, m)

	res, err := e.GetRecommendations(context.Background(), Request{Context: ContextHome, Limit: 10})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}

	seen := make(map[string]int)
	for _, r := range res.Recommendations {
		seen[r.ProductID]++
	}
	if seen["hot"] != 1 {
		t.Errorf("expected product deduplicated to one entry, got %d", seen["hot"])
	}
	if res.Total != 1 {
		t.Errorf("expected total to count the deduplicated pool, got %d", res.Total)
	}
}

func TestCartComplementary(t *testing.T) {
	m := catalog.NewMemory()
	now := time.Now()
	for _, id := range []string{"in-cart", "often", "rarely"} {
		m.AddProduct(catalog.Product{ID: id, Status: catalog.StatusActive})
	}
	m.SetCart("u-1", []string{"in-cart"})
	m.AddOrder("o-1", "x", "completed", now, []string{"in-cart", "often"})
	m.AddOrder("o-2", "y", "completed", now, []string{"in-cart", "often", "rarely"})
	e := newTestEngine(t, m)

	res, err := e.GetRecommendations(context.Background(),
		Request{Context: ContextCart, UserID: "u-1"})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(res.Recommendations) != 2 {
		t.Fatalf("expected 2 complementary products, got %d", len(res.Recommendations))
	}
	// Frequency determines order since the score is a fixed constant.
	if res.Recommendations[0].ProductID != "often" {
		t.Errorf("expected most co-purchased first, got %s", res.Recommendations[0].ProductID)
	}
	for _, r := range res.Recommendations {
		if r.Score != complementaryScore {
			t.Errorf("expected fixed score %f, got %f", complementaryScore, r.Score)
		}
		if r.Type != TypeComplementary {
			t.Errorf("expected complementary type, got %s", r.Type)
		}
		if r.ProductID == "in-cart" {
			t.Error("cart contents must not be recommended")
		}
	}
}

func TestCheckoutDelegatesToCart(t *testing.T) {
	m := catalog.NewMemory()
	now := time.Now()
	m.AddProduct(catalog.Product{ID: "p-1", Status: catalog.StatusActive})
	m.AddProduct(catalog.Product{ID: "p-2", Status: catalog.StatusActive})
	m.SetCart("u-1", []string{"p-1"})
	m.AddOrder("o-1", "x", "completed", now, []string{"p-1", "p-2"})
	e := newTestEngine(t, m)

	cart, err := e.GetRecommendations(context.Background(),
		Request{Context: ContextCart, UserID: "u-1"})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	checkout, err := e.GetRecommendations(context.Background(),
		Request{Context: ContextCheckout, UserID: "u-1"})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}

	if len(cart.Recommendations) != len(checkout.Recommendations) {
		t.Fatalf("expected identical candidate sets, got %d vs %d",
			len(cart.Recommendations), len(checkout.Recommendations))
	}
	if checkout.Algorithm != cart.Algorithm {
		t.Errorf("expected same algorithm, got %s vs %s", checkout.Algorithm, cart.Algorithm)
	}
}

func TestCacheReuseWithinTTL(t *testing.T) {
	m := catalog.NewSeededMemory()
	e := newTestEngine(t, m)
	req := Request{Context: ContextHome, Limit: 5}

	first, err := e.GetRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}

	// Catalog changes must not be visible within the TTL.
	m.AddProduct(catalog.Product{
		ID: "p-new", SalesCount: 9999, ViewsCount: 99999, Rating: 5,
		CreatedAt: time.Now(), Status: catalog.StatusActive,
	})

	second, err := e.GetRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if !second.Timestamp.Equal(first.Timestamp) {
		t.Error("expected cached result with the original timestamp")
	}
	if len(second.Recommendations) != len(first.Recommendations) {
		t.Error("expected cached result unchanged by catalog writes")
	}
}

func TestCacheExpiryTriggersFreshRetrieval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheTTL = 20 * time.Millisecond
	e, err := NewEngine(cfg, catalog.NewSeededMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	req := Request{Context: ContextHome, Limit: 5}

	first, err := e.GetRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	second, err := e.GetRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if second.Timestamp.Equal(first.Timestamp) {
		t.Error("expected fresh retrieval after TTL expiry")
	}
}

func TestLimitCappedAtMax(t *testing.T) {
	e := newTestEngine(t, catalog.NewSeededMemory())

	res, err := e.GetRecommendations(context.Background(),
		Request{Context: ContextHome, Limit: 10000})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(res.Recommendations) > e.Config().MaxLimit {
		t.Errorf("expected result capped at max limit, got %d", len(res.Recommendations))
	}
}

func TestAllScoresInRange(t *testing.T) {
	e := newTestEngine(t, catalog.NewSeededMemory())

	contexts := []Request{
		{Context: ContextHome, UserID: "demo-user"},
		{Context: ContextProduct, ProductID: "p-espresso"},
		{Context: ContextCategory, CategoryID: "cat-coffee"},
		{Context: ContextCart, UserID: "demo-user"},
	}
	for _, req := range contexts {
		res, err := e.GetRecommendations(context.Background(), req)
		if err != nil {
			t.Fatalf("context %s: expected nil err, got %v", req.Context, err)
		}
		for _, r := range res.Recommendations {
			if r.Score < 0 || r.Score > 1 {
				t.Errorf("context %s: score %f out of [0,1] for %s", req.Context, r.Score, r.ProductID)
			}
		}
		assertSortedDescending(t, res.Recommendations)
	}
}

func TestConcurrentHomeRequests(t *testing.T) {
	e := newTestEngine(t, catalog.NewSeededMemory())
	req := Request{Context: ContextHome, Limit: 5}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.GetRecommendations(context.Background(), req)
			if err != nil {
				t.Errorf("expected nil err, got %v", err)
				return
			}
			if res == nil {
				t.Error("expected non-nil result")
			}
		}()
	}
	wg.Wait()
}

func TestDegradesToEmptyOnStoreFailure(t *testing.T) {
	e := newTestEngine(t, &failingStore{err: errors.New("connection refused")})

	contexts := []Request{
		{Context: ContextHome, UserID: "u-1"},
		{Context: ContextProduct, ProductID: "p-1"},
		{Context: ContextCategory, CategoryID: "c-1"},
		{Context: ContextCart, UserID: "u-1"},
		{Context: ContextCheckout, UserID: "u-1"},
	}
	for _, req := range contexts {
		res, err := e.GetRecommendations(context.Background(), req)
		if err != nil {
			t.Fatalf("context %s: store failures must degrade, got %v", req.Context, err)
		}
		if len(res.Recommendations) != 0 || res.Total != 0 {
			t.Errorf("context %s: expected empty result, got %+v", req.Context, res)
		}
	}
}

func TestCachedResultIsCopied(t *testing.T) {
	e := newTestEngine(t, catalog.NewSeededMemory())
	req := Request{Context: ContextHome, Limit: 5}

	first, err := e.GetRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(first.Recommendations) == 0 {
		t.Fatal("expected recommendations from seeded store")
	}
	first.Recommendations[0].ProductID = "mutated"

	second, err := e.GetRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if second.Recommendations[0].ProductID == "mutated" {
		t.Error("caller mutation leaked into the cache")
	}
}

func TestTTLCacheTypeServesCachedResults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheType = "ttl"
	e, err := NewEngine(cfg, catalog.NewSeededMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	req := Request{Context: ContextHome, Limit: 5}

	first, err := e.GetRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	second, err := e.GetRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if !second.Timestamp.Equal(first.Timestamp) {
		t.Error("expected cached result from the ttl cache type")
	}
}

func TestSweepCacheRemovesExpiredEntries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheTTL = 10 * time.Millisecond
	e, err := NewEngine(cfg, catalog.NewSeededMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if _, err := e.GetRecommendations(context.Background(), Request{Context: ContextHome, Limit: 5}); err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if e.CacheStats().TotalKeys == 0 {
		t.Fatal("expected a cached entry")
	}

	time.Sleep(30 * time.Millisecond)
	removed := e.SweepCache()
	if removed != 1 {
		t.Errorf("expected 1 entry swept, got %d", removed)
	}
	if got := e.CacheStats().TotalKeys; got != 0 {
		t.Errorf("expected empty cache after sweep, got %d keys", got)
	}
}

func assertSortedDescending(t *testing.T, recs []ProductRecommendation) {
	t.Helper()
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Errorf("result not sorted descending at index %d: %f > %f",
				i, recs[i].Score, recs[i-1].Score)
		}
	}
}

// failingStore returns the same error from every query.
type failingStore struct {
	err error
}

func (s *failingStore) GetProduct(context.Context, string) (*catalog.Product, error) {
	return nil, s.err
}

func (s *failingStore) GetCategory(context.Context, string) (*catalog.Category, error) {
	return nil, s.err
}

func (s *failingStore) ListActiveByCategory(context.Context, string, int) ([]catalog.Product, error) {
	return nil, s.err
}

func (s *failingStore) ListPopular(context.Context, int) ([]catalog.Product, error) {
	return nil, s.err
}

func (s *failingStore) ListRecent(context.Context, int) ([]catalog.Product, error) {
	return nil, s.err
}

func (s *failingStore) ListByIDs(context.Context, []string) ([]catalog.Product, error) {
	return nil, s.err
}

func (s *failingStore) GetCartProductIDs(context.Context, string) ([]string, error) {
	return nil, s.err
}

func (s *failingStore) GetCompletedOrderIDs(context.Context, string) ([]string, error) {
	return nil, s.err
}

func (s *failingStore) GetOrderProductIDs(context.Context, []string) ([]string, error) {
	return nil, s.err
}

func (s *failingStore) ListCoPurchased(context.Context, []string, int) ([]catalog.CoPurchase, error) {
	return nil, s.err
}

var _ catalog.Store = (*failingStore)(nil)
