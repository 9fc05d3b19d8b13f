// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

/*
Package config provides layered configuration for the recommendation engine.

# Configuration Sources

LoadWithKoanf merges, in increasing priority:

  - Built-in defaults (defaultConfig)
  - An optional YAML file: $CONFIG_PATH, config.yaml, config.yml or
    /etc/beatmaprec/config.yaml
  - Environment variables from an explicit mapping table

Unknown environment variables are ignored.

# Environment Variables

Metadata cache:
  - META_CACHE_CAPACITY: completed entries kept (default: 50000)
  - META_CACHE_TTL: positive entry lifetime, 0 = forever (default: 0)
  - META_CACHE_NEGATIVE_TTL: not-found entry lifetime (default: 1h)
  - META_FETCH_TIMEOUT: bound on one computation (default: 30s)
  - META_WARM_CONCURRENCY: parallel warm-up computations (default: 4)

Sampler:
  - SAMPLER_MAX_ATTEMPTS: soft-miss retries per request (default: 8)
  - SAMPLER_SEED: random seed, 0 = from clock (default: 0)

Ledger:
  - LEDGER_WINDOW: read-time retention window (default: 336h)
  - LEDGER_EVENTS_ENABLED: publish audit events (default: true)
  - LEDGER_EVENT_BUFFER: in-process event buffer (default: 256)

Store:
  - STORE_PATH: BadgerDB directory (default: /data/beatmaprec)
  - STORE_IN_MEMORY: keep data in memory only (default: false)

Game-data API:
  - GAMEDATA_RATE_LIMIT, GAMEDATA_RATE_BURST
  - GAMEDATA_BREAKER_MAX_REQUESTS, GAMEDATA_BREAKER_INTERVAL,
    GAMEDATA_BREAKER_TIMEOUT, GAMEDATA_BREAKER_MIN_REQUESTS,
    GAMEDATA_BREAKER_FAILURE_RATIO
  - GAMEDATA_PROFILE_CAPACITY: cached user profiles (default: 10000)

Supervisor:
  - CACHE_SWEEP_INTERVAL: metadata cache TTL sweep period (default: 5m)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Field ranges are declared with go-playground/validator tags; Validate adds
the cross-field rules that tags cannot express.
*/
package config
