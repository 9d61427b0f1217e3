// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package api

import (
	"net/http"
	"time"
)

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	startTime time.Time
	version   string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		version:   version,
	}
}

// Health handles GET /health. Recommendation serving degrades rather than
// fails when the catalog is down, so liveness is not tied to the database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}
