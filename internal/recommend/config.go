// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package recommend

import "fmt"

// DefaultMaxAttempts bounds soft-miss retries per sampling request.
const DefaultMaxAttempts = 8

// Config contains sampler configuration.
type Config struct {
	// MaxAttempts is the number of candidates probed against the metadata
	// cache before giving up with ErrNoCandidates.
	// Default: 8.
	MaxAttempts int `json:"max_attempts"`

	// Seed seeds the sampler's random source. Zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	return nil
}
