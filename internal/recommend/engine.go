// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/logging"
	"github.com/tomtom215/beatmaprec/internal/models"
)

// Deps are the collaborators an Engine is built from.
type Deps struct {
	Metadata    MetadataSource
	Ledger      Ledger
	Populations Populations

	// Resolver is optional; without it RecommendForHandle fails with
	// apperr.ErrNotFound.
	Resolver IdentityResolver
}

// Engine is the facade the chat-command layer talks to.
// It is safe for concurrent use.
type Engine struct {
	sampler  *Sampler
	meta     MetadataSource
	ledger   Ledger
	resolver IdentityResolver
	logger   zerolog.Logger
}

// NewEngine creates an engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(deps Deps, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if deps.Metadata == nil || deps.Ledger == nil || deps.Populations == nil {
		return nil, errors.New("recommend: metadata, ledger and populations are required")
	}

	sampler, err := NewSampler(deps.Metadata, deps.Ledger, deps.Populations, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Engine{
		sampler:  sampler,
		meta:     deps.Metadata,
		ledger:   deps.Ledger,
		resolver: deps.Resolver,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend samples a recommendation. The request is tagged with a
// correlation ID unless ctx already carries one.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*models.BareRecommendation, error) {
	ctx = logging.EnsureCorrelationID(ctx)
	start := time.Now()

	rec, err := e.sampler.Sample(ctx, req)

	logger := e.logger.With().
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Int("user_id", int(req.UserID)).
		Stringer("model", req.Model).
		Dur("latency", time.Since(start)).
		Logger()
	if err != nil {
		logger.Debug().Err(err).Msg("recommendation failed")
		return nil, err
	}
	logger.Debug().
		Int("beatmap_id", int(rec.BeatmapID)).
		Stringer("mods", rec.Mods).
		Msg("recommendation complete")
	return rec, nil
}

// RecommendForHandle resolves a chat handle and samples for that user.
// An unresolved handle is apperr.ErrNotFound.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) RecommendForHandle(ctx context.Context, handle string, req Request) (*models.BareRecommendation, error) {
	user, err := e.ResolveHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	req.UserID = user
	return e.Recommend(ctx, req)
}

// ResolveHandle maps a chat handle to a user id.
func (e *Engine) ResolveHandle(ctx context.Context, handle string) (models.UserID, error) {
	const op = "recommend.resolve_handle"
	if e.resolver == nil {
		return 0, apperr.NotFound(op, "handle %q: no identity resolver configured", handle)
	}
	user, ok, err := e.resolver.ResolveHandle(ctx, handle)
	if err != nil {
		return 0, apperr.FromIO(op, err)
	}
	if !ok {
		return 0, apperr.NotFound(op, "handle %q is not linked to an account", handle)
	}
	return user, nil
}

// Load materializes the metadata of a recommendation for display.
func (e *Engine) Load(ctx context.Context, rec *models.BareRecommendation, locale models.Locale) (*models.BeatmapMeta, error) {
	if rec == nil {
		return nil, apperr.InvalidRequest("recommend.load", "nil recommendation")
	}
	return e.meta.Get(ctx, rec.BeatmapID, rec.Mods, locale)
}

// Accept records that rec was delivered to user, excluding it from future
// samples within the ledger window.
func (e *Engine) Accept(ctx context.Context, user models.UserID, rec *models.BareRecommendation) (models.GivenRecommendation, error) {
	if rec == nil {
		return models.GivenRecommendation{}, apperr.InvalidRequest("recommend.accept", "nil recommendation")
	}
	given, err := e.ledger.Record(ctx, user, rec.BeatmapID, rec.Mods)
	if err != nil {
		return models.GivenRecommendation{}, fmt.Errorf("accept recommendation: %w", err)
	}
	return given, nil
}

// Forget deletes the user's recommendation history.
func (e *Engine) Forget(ctx context.Context, user models.UserID) (int, error) {
	n, err := e.ledger.ForgetAll(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("forget recommendations: %w", err)
	}
	return n, nil
}
