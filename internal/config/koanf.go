// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/beatmaprec/config.yaml",
	"/etc/beatmaprec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults. The result is validated before it is
// returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Metadata cache
	"meta_cache_capacity":     "cache.capacity",
	"meta_cache_ttl":          "cache.ttl",
	"meta_cache_negative_ttl": "cache.negative_ttl",
	"meta_fetch_timeout":      "cache.fetch_timeout",
	"meta_warm_concurrency":   "cache.warm_concurrency",

	// Sampler
	"sampler_max_attempts": "sampler.max_attempts",
	"sampler_seed":         "sampler.seed",

	// Ledger
	"ledger_window":         "ledger.window",
	"ledger_events_enabled": "ledger.events_enabled",
	"ledger_event_buffer":   "ledger.event_buffer",

	// Store
	"store_path":      "store.path",
	"store_in_memory": "store.in_memory",

	// Game-data API
	"gamedata_rate_limit":            "gamedata.rate_limit",
	"gamedata_rate_burst":            "gamedata.rate_burst",
	"gamedata_breaker_max_requests":  "gamedata.breaker_max_requests",
	"gamedata_breaker_interval":      "gamedata.breaker_interval",
	"gamedata_breaker_timeout":       "gamedata.breaker_timeout",
	"gamedata_breaker_min_requests":  "gamedata.breaker_min_requests",
	"gamedata_breaker_failure_ratio": "gamedata.breaker_failure_ratio",
	"gamedata_profile_capacity":      "gamedata.profile_capacity",

	// Supervisor
	"cache_sweep_interval": "supervisor.sweep_interval",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - META_CACHE_CAPACITY -> cache.capacity
//   - SAMPLER_MAX_ATTEMPTS -> sampler.max_attempts
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped keys are skipped so random environment variables cannot
	// pollute the config.
	return ""
}
