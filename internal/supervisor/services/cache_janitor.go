// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSweepInterval is used when the janitor is given no interval.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper removes expired entries and reports how many were removed.
// *metadata.Cache satisfies it.
type Sweeper interface {
	CleanupExpired() int
}

// CacheJanitorService periodically sweeps expired cache entries.
// Expired entries are already ignored on read; sweeping only reclaims memory.
type CacheJanitorService struct {
	sweepers []Sweeper
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheJanitorService creates a janitor sweeping every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(interval time.Duration, logger zerolog.Logger, sweepers ...Sweeper) *CacheJanitorService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &CacheJanitorService{
		sweepers: sweepers,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Int("caches", len(s.sweepers)).
		Msg("cache janitor starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cache janitor shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one pass over every cache and returns the total removed.
func (s *CacheJanitorService) Sweep() int {
	total := 0
	for _, sw := range s.sweepers {
		total += sw.CleanupExpired()
	}
	if total > 0 {
		s.logger.Debug().Int("removed", total).Msg("expired cache entries swept")
	}
	return total
}

// String returns the service name for logging.
func (s *CacheJanitorService) String() string {
	return s.name
}
