// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package config

import (
	"time"

	"github.com/tomtom215/beatmaprec/internal/gamedata"
	"github.com/tomtom215/beatmaprec/internal/ledger"
	"github.com/tomtom215/beatmaprec/internal/logging"
	"github.com/tomtom215/beatmaprec/internal/metadata"
	"github.com/tomtom215/beatmaprec/internal/recommend"
	"github.com/tomtom215/beatmaprec/internal/store"
)

// Config holds all application configuration.
type Config struct {
	Cache      CacheConfig      `koanf:"cache"`
	Sampler    SamplerConfig    `koanf:"sampler"`
	Ledger     LedgerConfig     `koanf:"ledger"`
	Store      StoreConfig      `koanf:"store"`
	GameData   GameDataConfig   `koanf:"gamedata"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// CacheConfig holds metadata cache settings.
type CacheConfig struct {
	Capacity        int           `koanf:"capacity" validate:"min=1"`
	TTL             time.Duration `koanf:"ttl" validate:"min=0"`
	NegativeTTL     time.Duration `koanf:"negative_ttl" validate:"min=0"`
	FetchTimeout    time.Duration `koanf:"fetch_timeout" validate:"min=0"`
	WarmConcurrency int           `koanf:"warm_concurrency" validate:"min=1,max=256"`
}

// SamplerConfig holds recommendation sampler settings.
type SamplerConfig struct {
	MaxAttempts int   `koanf:"max_attempts" validate:"min=1,max=1000"`
	Seed        int64 `koanf:"seed"`
}

// LedgerConfig holds given-recommendation ledger settings.
type LedgerConfig struct {
	Window        time.Duration `koanf:"window" validate:"gt=0"`
	EventsEnabled bool          `koanf:"events_enabled"`
	EventBuffer   int64         `koanf:"event_buffer" validate:"min=0"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// GameDataConfig holds game-data API client settings.
type GameDataConfig struct {
	RateLimit           float64       `koanf:"rate_limit" validate:"min=0"`
	RateBurst           int           `koanf:"rate_burst" validate:"min=1"`
	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests" validate:"min=1"`
	BreakerInterval     time.Duration `koanf:"breaker_interval" validate:"min=0"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests" validate:"min=1"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"gt=0,lte=1"`
	ProfileCapacity     int           `koanf:"profile_capacity" validate:"min=1"`
}

// SupervisorConfig holds background service settings.
type SupervisorConfig struct {
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	meta := metadata.DefaultConfig()
	gd := gamedata.DefaultResilientConfig()

	return &Config{
		Cache: CacheConfig{
			Capacity:        meta.Capacity,
			TTL:             meta.TTL,
			NegativeTTL:     meta.NegativeTTL,
			FetchTimeout:    meta.FetchTimeout,
			WarmConcurrency: meta.WarmConcurrency,
		},
		Sampler: SamplerConfig{
			MaxAttempts: recommend.DefaultMaxAttempts,
			Seed:        0, // seeded from the clock
		},
		Ledger: LedgerConfig{
			Window:        ledger.DefaultWindow,
			EventsEnabled: true,
			EventBuffer:   256,
		},
		Store: StoreConfig{
			Path:     "/data/beatmaprec",
			InMemory: false,
		},
		GameData: GameDataConfig{
			RateLimit:           gd.RateLimit,
			RateBurst:           gd.RateBurst,
			BreakerMaxRequests:  gd.BreakerMaxRequests,
			BreakerInterval:     gd.BreakerInterval,
			BreakerTimeout:      gd.BreakerTimeout,
			BreakerMinRequests:  gd.BreakerMinRequests,
			BreakerFailureRatio: gd.BreakerFailureRatio,
			ProfileCapacity:     10000,
		},
		Supervisor: SupervisorConfig{
			SweepInterval: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// ForMetadata returns the metadata cache settings.
func (c *Config) ForMetadata() metadata.Config {
	return metadata.Config{
		Capacity:        c.Cache.Capacity,
		TTL:             c.Cache.TTL,
		NegativeTTL:     c.Cache.NegativeTTL,
		FetchTimeout:    c.Cache.FetchTimeout,
		WarmConcurrency: c.Cache.WarmConcurrency,
	}
}

// ForSampler returns the sampler settings.
func (c *Config) ForSampler() *recommend.Config {
	return &recommend.Config{
		MaxAttempts: c.Sampler.MaxAttempts,
		Seed:        c.Sampler.Seed,
	}
}

// ForLedger returns the ledger settings.
func (c *Config) ForLedger() ledger.Config {
	return ledger.Config{Window: c.Ledger.Window}
}

// ForStore returns the persistence settings.
func (c *Config) ForStore() store.Config {
	return store.Config{Path: c.Store.Path, InMemory: c.Store.InMemory}
}

// ForGameData returns the game-data client settings.
func (c *Config) ForGameData() gamedata.ResilientConfig {
	return gamedata.ResilientConfig{
		Name:                "gamedata-api",
		RateLimit:           c.GameData.RateLimit,
		RateBurst:           c.GameData.RateBurst,
		BreakerMaxRequests:  c.GameData.BreakerMaxRequests,
		BreakerInterval:     c.GameData.BreakerInterval,
		BreakerTimeout:      c.GameData.BreakerTimeout,
		BreakerMinRequests:  c.GameData.BreakerMinRequests,
		BreakerFailureRatio: c.GameData.BreakerFailureRatio,
	}
}

// ForLogging returns the logger settings.
func (c *Config) ForLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
