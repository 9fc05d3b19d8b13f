// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for MetaCacheRequests.
const (
	ResultHit         = "hit"
	ResultNegativeHit = "negative_hit"
	ResultMiss        = "miss"
	ResultCoalesced   = "coalesced"
)

var (
	// Metadata Cache Metrics
	MetaCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beatmap_meta_cache_requests_total",
			Help: "Metadata cache lookups by result",
		},
		[]string{"result"}, // hit, negative_hit, miss, coalesced
	)

	MetaCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beatmap_meta_cache_entries",
			Help: "Current number of completed metadata cache entries",
		},
	)

	MetaCacheInflight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beatmap_meta_cache_inflight",
			Help: "Metadata computations currently in flight",
		},
	)

	MetaComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beatmap_meta_compute_duration_seconds",
			Help:    "Duration of metadata computations (fetch + estimate)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"}, // ok, not_found, transient, cancelled
	)

	MetaFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beatmap_meta_fallbacks_total",
			Help: "Estimates served for a nearest satisfiable modifier set",
		},
	)

	MetaCacheSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beatmap_meta_cache_swept_total",
			Help: "Expired metadata entries removed by maintenance sweeps",
		},
	)

	// Sampler Metrics
	SamplerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_sampler_requests_total",
			Help: "Sampling requests by model and outcome",
		},
		[]string{"model", "outcome"}, // ok, invalid_request, no_candidates, cancelled, error
	)

	SamplerSoftMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_sampler_soft_misses_total",
			Help: "Candidates skipped because metadata could not be computed",
		},
		[]string{"reason"}, // not_found, transient
	)

	SamplerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_sampler_duration_seconds",
			Help:    "Duration of sampling requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Ledger Metrics
	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_ledger_operations_total",
			Help: "Given-recommendation ledger operations",
		},
		[]string{"operation", "status"}, // recent|record|forget, success|error
	)

	LedgerEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_ledger_events_dropped_total",
			Help: "Ledger audit events that failed to publish",
		},
	)

	LedgerEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_ledger_events_consumed_total",
			Help: "Ledger audit events received by the event log consumer",
		},
		[]string{"topic"},
	)

	// Game-data API Metrics
	GameDataRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamedata_requests_total",
			Help: "Game-data API requests by endpoint and status",
		},
		[]string{"endpoint", "status"}, // success, not_found, failure, rejected, rate_limited
	)

	GameDataRateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamedata_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the API rate limiter",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	GameDataProfileCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamedata_profile_cache_total",
			Help: "User profile lookups by result",
		},
		[]string{"result"}, // hit, stale, miss
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordMetaCompute records one finished metadata computation.
func RecordMetaCompute(outcome string, duration time.Duration) {
	MetaComputeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordSample records one finished sampling request.
func RecordSample(model, outcome string, duration time.Duration) {
	SamplerRequests.WithLabelValues(model, outcome).Inc()
	SamplerDuration.Observe(duration.Seconds())
}

// RecordLedgerOp records a ledger operation outcome.
func RecordLedgerOp(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	LedgerOperations.WithLabelValues(operation, status).Inc()
}
