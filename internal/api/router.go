// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmarchetti/vetrina/internal/config"
	"github.com/nmarchetti/vetrina/internal/middleware"
	"github.com/nmarchetti/vetrina/internal/recommend"
)

// Router builds the service's HTTP handler tree.
type Router struct {
	recommend *RecommendHandler
	health    *HealthHandler
	cfg       config.APIConfig
}

// NewRouter creates a router serving the given engine.
func NewRouter(engine *recommend.Engine, cfg config.APIConfig, version string) *Router {
	return &Router{
		recommend: NewRecommendHandler(engine, cfg.RequestTimeout),
		health:    NewHealthHandler(version),
		cfg:       cfg,
	}
}

// Handler assembles the chi route tree with the global middleware stack.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rt.cfg.RateLimitReqs, rt.cfg.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/home", rt.recommend.Home)
		r.Get("/product/{productID}", rt.recommend.Product)
		r.Get("/category/{categoryID}", rt.recommend.Category)
		r.Get("/cart/{userID}", rt.recommend.Cart)
		r.Get("/checkout/{userID}", rt.recommend.Checkout)
		r.Get("/cache/stats", rt.recommend.CacheStats)
	})

	// Observability endpoints bypass the API rate limit so monitoring
	// never gets throttled out.
	r.Get("/health", rt.health.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
