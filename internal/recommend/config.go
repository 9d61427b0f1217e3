// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package recommend

import (
	"fmt"
	"time"
)

// Config contains the operational parameters of the engine. The scoring
// weights and normalizing caps are fixed constants in scoring.go, not
// configuration.
type Config struct {
	// DefaultLimit is applied when a request leaves Limit at zero.
	// Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps the request limit. Default: 50.
	MaxLimit int `json:"max_limit"`

	// OverfetchFactor multiplies the limit when retrieving candidates so
	// post-filtering (anchor exclusion, dedup) still fills the result.
	// Default: 2.
	OverfetchFactor int `json:"overfetch_factor"`

	// CacheTTL is how long a cached result stays valid. Default: 5m.
	CacheTTL time.Duration `json:"cache_ttl"`

	// CacheMaxEntries bounds the result cache. Only the lru cache type
	// enforces the bound. Default: 10000.
	CacheMaxEntries int `json:"cache_max_entries"`

	// CacheType selects the result cache implementation: "lru" (bounded,
	// default) or "ttl" (unbounded).
	CacheType string `json:"cache_type"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit:    10,
		MaxLimit:        50,
		OverfetchFactor: 2,
		CacheTTL:        5 * time.Minute,
		CacheMaxEntries: 10000,
		CacheType:       "lru",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit must be >= default_limit, got %d < %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.OverfetchFactor < 1 {
		return fmt.Errorf("overfetch_factor must be positive, got %d", c.OverfetchFactor)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", c.CacheTTL)
	}
	if c.CacheMaxEntries < 1 {
		return fmt.Errorf("cache_max_entries must be positive, got %d", c.CacheMaxEntries)
	}
	switch c.CacheType {
	case "", "lru", "ttl":
	default:
		return fmt.Errorf("cache_type must be lru or ttl, got %q", c.CacheType)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
