// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nmarchetti/vetrina/internal/recommend"
	"github.com/nmarchetti/vetrina/internal/validation"
)

// RecommendHandler serves the recommendation endpoints.
type RecommendHandler struct {
	engine   *recommend.Engine
	timeout  time.Duration
	limitTag string
}

// NewRecommendHandler creates a recommendation handler. The limit query
// parameter is capped at the engine's configured maximum.
func NewRecommendHandler(engine *recommend.Engine, timeout time.Duration) *RecommendHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RecommendHandler{
		engine:   engine,
		timeout:  timeout,
		// An absent limit means "engine default" and skips validation
		// entirely, so an explicit zero is rejected here.
		limitTag: fmt.Sprintf("min=1,max=%d", engine.Config().MaxLimit),
	}
}

// Home handles GET /api/v1/recommendations/home.
// Anonymous requests get trending and popular entries; a user_id query
// parameter adds personalized entries.
func (h *RecommendHandler) Home(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, ok := h.parseLimit(rw, r)
	if !ok {
		return
	}

	h.serve(rw, r, recommend.Request{
		Context: recommend.ContextHome,
		UserID:  r.URL.Query().Get("user_id"),
		Limit:   limit,
	})
}

// Product handles GET /api/v1/recommendations/product/{productID}.
func (h *RecommendHandler) Product(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	productID := chi.URLParam(r, "productID")
	if productID == "" {
		rw.BadRequest("Product ID is required")
		return
	}

	limit, ok := h.parseLimit(rw, r)
	if !ok {
		return
	}

	h.serve(rw, r, recommend.Request{
		Context:   recommend.ContextProduct,
		ProductID: productID,
		Limit:     limit,
	})
}

// Category handles GET /api/v1/recommendations/category/{categoryID}.
func (h *RecommendHandler) Category(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	categoryID := chi.URLParam(r, "categoryID")
	if categoryID == "" {
		rw.BadRequest("Category ID is required")
		return
	}

	limit, ok := h.parseLimit(rw, r)
	if !ok {
		return
	}

	h.serve(rw, r, recommend.Request{
		Context:    recommend.ContextCategory,
		CategoryID: categoryID,
		Limit:      limit,
	})
}

// Cart handles GET /api/v1/recommendations/cart/{userID}.
func (h *RecommendHandler) Cart(w http.ResponseWriter, r *http.Request) {
	h.cartLike(w, r, recommend.ContextCart)
}

// Checkout handles GET /api/v1/recommendations/checkout/{userID}.
func (h *RecommendHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.cartLike(w, r, recommend.ContextCheckout)
}

func (h *RecommendHandler) cartLike(w http.ResponseWriter, r *http.Request, ctx recommend.Context) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("User ID is required")
		return
	}

	limit, ok := h.parseLimit(rw, r)
	if !ok {
		return
	}

	h.serve(rw, r, recommend.Request{
		Context: ctx,
		UserID:  userID,
		Limit:   limit,
	})
}

// CacheStats handles GET /api/v1/recommendations/cache/stats.
func (h *RecommendHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stats := h.engine.CacheStats()
	rw.Success(map[string]interface{}{
		"hits":       stats.Hits,
		"misses":     stats.Misses,
		"evictions":  stats.Evictions,
		"total_keys": stats.TotalKeys,
		"hit_rate":   h.engine.CacheHitRate(),
	})
}

// serve runs the engine with a deadline and writes the envelope. Empty
// recommendation lists are successful responses, never errors.
func (h *RecommendHandler) serve(rw *ResponseWriter, r *http.Request, req recommend.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.engine.GetRecommendations(ctx, req)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidContext) {
			rw.BadRequest("Invalid recommendation context")
			return
		}
		rw.InternalError("Failed to generate recommendations")
		return
	}

	rw.Success(res)
}

// parseLimit reads and validates the limit query parameter. Returns false
// after writing the error response when the parameter is invalid.
func (h *RecommendHandler) parseLimit(rw *ResponseWriter, r *http.Request) (int, bool) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		rw.BadRequest("limit must be an integer")
		return 0, false
	}

	if verr := validation.ValidateVar("limit", limit, h.limitTag); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return 0, false
	}

	return limit, true
}
