// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/nmarchetti/vetrina/internal/catalog"
	"github.com/nmarchetti/vetrina/internal/config"
	"github.com/nmarchetti/vetrina/internal/recommend"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWithConfig(t, recommend.DefaultConfig())
}

func newTestRouterWithConfig(t *testing.T, engineCfg *recommend.Config) http.Handler {
	t.Helper()

	engine, err := recommend.NewEngine(engineCfg, catalog.NewSeededMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	cfg := config.APIConfig{
		RequestTimeout:  5 * time.Second,
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
		CORSOrigins:     []string{"*"},
	}
	return NewRouter(engine, cfg, "test").Handler()
}

func doRequest(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec, resp
}

func decodeResult(t *testing.T, data interface{}) *recommend.Result {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("failed to re-marshal data: %v", err)
	}
	var res recommend.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	return &res
}

func TestHomeEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doRequest(t, router, "/api/v1/recommendations/home?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !resp.Success {
		t.Fatalf("expected success envelope, got %+v", resp)
	}

	res := decodeResult(t, resp.Data)
	if res.Context != "home" {
		t.Errorf("expected home context, got %q", res.Context)
	}
	if len(res.Recommendations) == 0 {
		t.Error("expected recommendations from seeded store")
	}
	if len(res.Recommendations) > 5 {
		t.Errorf("expected at most 5 recommendations, got %d", len(res.Recommendations))
	}
}

func TestProductEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doRequest(t, router, "/api/v1/recommendations/product/p-espresso")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	res := decodeResult(t, resp.Data)
	if res.Context != "product" {
		t.Errorf("expected product context, got %q", res.Context)
	}
	for _, r := range res.Recommendations {
		if r.ProductID == "p-espresso" {
			t.Error("anchor product must not be recommended")
		}
	}
}

func TestProductEndpointMissingAnchorIsEmptyOK(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doRequest(t, router, "/api/v1/recommendations/product/does-not-exist")
	if rec.Code != http.StatusOK {
		t.Fatalf("missing anchor must be a 200 with empty result, got %d", rec.Code)
	}

	res := decodeResult(t, resp.Data)
	if len(res.Recommendations) != 0 || res.Total != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestCategoryEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doRequest(t, router, "/api/v1/recommendations/category/cat-coffee?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	res := decodeResult(t, resp.Data)
	if len(res.Recommendations) > 2 {
		t.Errorf("expected at most 2 recommendations, got %d", len(res.Recommendations))
	}
	for _, r := range res.Recommendations {
		if r.Type != recommend.TypePopular {
			t.Errorf("expected popular type, got %s", r.Type)
		}
	}
}

func TestCartAndCheckoutEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/recommendations/cart/demo-user",
		"/api/v1/recommendations/checkout/demo-user",
	} {
		rec, resp := doRequest(t, router, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		res := decodeResult(t, resp.Data)
		for _, r := range res.Recommendations {
			if r.Type != recommend.TypeComplementary {
				t.Errorf("%s: expected complementary type, got %s", path, r.Type)
			}
		}
	}
}

func TestLimitValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{"zero limit", "/api/v1/recommendations/home?limit=0"},
		{"negative limit", "/api/v1/recommendations/home?limit=-1"},
		{"over maximum", "/api/v1/recommendations/home?limit=500"},
		{"not an integer", "/api/v1/recommendations/home?limit=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, router, tt.path)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if resp.Success || resp.Error == nil {
				t.Errorf("expected error envelope, got %+v", resp)
			}
		})
	}
}

func TestLimitBoundFollowsEngineConfig(t *testing.T) {
	cfg := recommend.DefaultConfig()
	cfg.MaxLimit = 100
	router := newTestRouterWithConfig(t, cfg)

	rec, resp := doRequest(t, router, "/api/v1/recommendations/home?limit=80")
	if rec.Code != http.StatusOK {
		t.Fatalf("limit below the configured maximum must pass, got %d: %s", rec.Code, rec.Body.String())
	}
	if !resp.Success {
		t.Fatalf("expected success envelope, got %+v", resp)
	}

	rec, resp = doRequest(t, router, "/api/v1/recommendations/home?limit=101")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("limit above the configured maximum must be rejected, got %d", rec.Code)
	}
	if resp.Success || resp.Error == nil {
		t.Errorf("expected error envelope, got %+v", resp)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	// Warm the cache with one request.
	doRequest(t, router, "/api/v1/recommendations/home")

	rec, resp := doRequest(t, router, "/api/v1/recommendations/cache/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	stats, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected stats object, got %T", resp.Data)
	}
	for _, field := range []string{"hits", "misses", "total_keys", "hit_rate"} {
		if _, ok := stats[field]; !ok {
			t.Errorf("expected %s in cache stats", field)
		}
	}
}

func TestResponseCarriesRequestID(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/home", nil)
	req.Header.Set("X-Request-ID", "trace-me")
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "trace-me" {
		t.Errorf("expected request ID echoed in header, got %q", got)
	}

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Meta == nil || resp.Meta.RequestID != "trace-me" {
		t.Errorf("expected request ID in meta, got %+v", resp.Meta)
	}
}
