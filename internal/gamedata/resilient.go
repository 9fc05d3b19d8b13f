// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package gamedata

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/logging"
	"github.com/tomtom215/beatmaprec/internal/metrics"
	"github.com/tomtom215/beatmaprec/internal/models"
)

// ResilientConfig configures rate limiting and circuit breaking.
type ResilientConfig struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// RateLimit is the sustained request rate per second. Zero disables limiting.
	RateLimit float64

	// RateBurst is the maximum burst size. Minimum 1.
	RateBurst int

	// BreakerMaxRequests is the number of probes allowed in half-open state.
	BreakerMaxRequests uint32

	// BreakerInterval resets failure counts while closed.
	BreakerInterval time.Duration

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration

	// BreakerMinRequests is the sample size required before tripping.
	BreakerMinRequests uint32

	// BreakerFailureRatio trips the breaker once reached.
	BreakerFailureRatio float64
}

// DefaultResilientConfig returns conservative defaults for the public API.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		Name:                "gamedata-api",
		RateLimit:           20,
		RateBurst:           10,
		BreakerMaxRequests:  3,
		BreakerInterval:     time.Minute,
		BreakerTimeout:      30 * time.Second,
		BreakerMinRequests:  10,
		BreakerFailureRatio: 0.6,
	}
}

// Resilient wraps a Client with a rate limiter and a circuit breaker.
//
// A not-found answer is a successful round trip for the breaker; only I/O
// failures count against it. While the breaker is open calls fail fast with
// apperr.ErrTransient so the sampler moves on to another candidate.
type Resilient struct {
	inner   Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[any]
	name    string
}

// NewResilient wraps inner.
func NewResilient(inner Client, cfg ResilientConfig) *Resilient {
	if cfg.Name == "" {
		cfg.Name = "gamedata-api"
	}
	if cfg.RateBurst < 1 {
		cfg.RateBurst = 1
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	name := cfg.Name
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.BreakerFailureRatio {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: func(err error) bool {
			k := apperr.KindOf(err)
			return err == nil || k == apperr.ErrNotFound || k == apperr.ErrCancelled
		},
	})

	return &Resilient{
		inner:   inner,
		limiter: rate.NewLimiter(limit, cfg.RateBurst),
		cb:      cb,
		name:    name,
	}
}

// Beatmap implements Client.
func (r *Resilient) Beatmap(ctx context.Context, id models.BeatmapID) (*models.Beatmap, error) {
	return castResult[models.Beatmap](r.execute(ctx, "beatmap", func(ctx context.Context) (any, error) {
		return r.inner.Beatmap(ctx, id)
	}))
}

// User implements Client.
func (r *Resilient) User(ctx context.Context, id models.UserID) (*models.User, error) {
	return castResult[models.User](r.execute(ctx, "user", func(ctx context.Context) (any, error) {
		return r.inner.User(ctx, id)
	}))
}

// State returns the current breaker state.
func (r *Resilient) State() gobreaker.State {
	return r.cb.State()
}

func (r *Resilient) execute(ctx context.Context, endpoint string, fn func(context.Context) (any, error)) (any, error) {
	op := "gamedata." + endpoint
	if err := apperr.CheckContext(ctx, op); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		// Wait also fails early when the deadline cannot be met; only an
		// ended context is a cancellation.
		if ctx.Err() != nil {
			return nil, apperr.New(op, apperr.ErrCancelled, err)
		}
		metrics.GameDataRequests.WithLabelValues(endpoint, "rate_limited").Inc()
		return nil, apperr.New(op, apperr.ErrTransient, err)
	}
	metrics.GameDataRateLimitWait.Observe(time.Since(start).Seconds())

	result, err := r.cb.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err == nil {
		metrics.GameDataRequests.WithLabelValues(endpoint, "success").Inc()
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.GameDataRequests.WithLabelValues(endpoint, "rejected").Inc()
		return nil, apperr.New(op, apperr.ErrTransient, err)
	}
	if apperr.KindOf(err) == apperr.ErrNotFound {
		metrics.GameDataRequests.WithLabelValues(endpoint, "not_found").Inc()
		return nil, err
	}
	metrics.GameDataRequests.WithLabelValues(endpoint, "failure").Inc()
	return nil, apperr.FromIO(op, err)
}

// castResult type-asserts a breaker result.
func castResult[T any](result any, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok || typed == nil {
		return nil, apperr.New("gamedata", apperr.ErrTransient, fmt.Errorf("unexpected result type %T", result))
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
