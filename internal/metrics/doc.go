// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

/*
Package metrics provides Prometheus instrumentation for the recommendation engine.

Metrics are registered on the default registry through promauto and can be
exposed by the embedding application with promhttp.

# Available Metrics

Metadata cache:
  - beatmap_meta_cache_requests_total{result}: hit, negative_hit, miss, coalesced
  - beatmap_meta_cache_entries: completed entries held
  - beatmap_meta_cache_inflight: computations in progress
  - beatmap_meta_compute_duration_seconds{outcome}
  - beatmap_meta_fallbacks_total
  - beatmap_meta_cache_swept_total

Sampler:
  - recommend_sampler_requests_total{model,outcome}
  - recommend_sampler_soft_misses_total{reason}
  - recommend_sampler_duration_seconds

Ledger:
  - recommend_ledger_operations_total{operation,status}
  - recommend_ledger_events_dropped_total

Game-data API:
  - gamedata_requests_total{endpoint,status}
  - gamedata_rate_limit_wait_seconds
  - gamedata_profile_cache_total{result}
  - circuit_breaker_state{name}, circuit_breaker_transitions_total{name,from,to}

# Coalescing

A high coalesced/miss ratio means many sessions probe the same beatmaps
concurrently; each miss triggers exactly one external fetch.
*/
package metrics
