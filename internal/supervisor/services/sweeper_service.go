// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CacheSweeper is the subset of the recommendation engine the sweeper needs.
type CacheSweeper interface {
	SweepCache() int
}

// CacheSweeperService periodically evicts expired entries from the
// recommendation result cache. The LRU cache only drops expired entries on
// access, so without a sweep a quiet key can hold memory past its TTL.
type CacheSweeperService struct {
	sweeper  CacheSweeper
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheSweeperService creates a sweeper running at the given interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheSweeperService(sweeper CacheSweeper, interval time.Duration, logger zerolog.Logger) *CacheSweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheSweeperService{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.With().Str("component", "cache-sweeper").Logger(),
		name:     "cache-sweeper",
	}
}

// Serve implements suture.Service. Runs until the context is canceled.
func (s *CacheSweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed := s.sweeper.SweepCache()
			if removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("swept expired cache entries")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *CacheSweeperService) String() string {
	return s.name
}
