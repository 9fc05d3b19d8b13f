// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/logging"
	"github.com/tomtom215/beatmaprec/internal/metrics"
	"github.com/tomtom215/beatmaprec/internal/models"
	"github.com/tomtom215/beatmaprec/internal/mods"
)

const opSample = "recommend.sample"

// Sampler draws bare recommendations from a model population.
// It is safe for concurrent use.
type Sampler struct {
	meta        MetadataSource
	history     History
	populations Populations
	maxAttempts int
	logger      zerolog.Logger

	// Random source (protected by rngMu for concurrent access)
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewSampler creates a sampler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSampler(meta MetadataSource, history History, populations Populations, cfg *Config, logger zerolog.Logger) (*Sampler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Sampler{
		meta:        meta,
		history:     history,
		populations: populations,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger.With().Str("component", "sampler").Logger(),
		rng:         rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for recommendation sampling
	}, nil
}

// Sample draws one recommendation for req.
//
// The exclusion set is req.Exclude plus the user's recent history. Excluded
// beatmaps are removed before drawing, so the remaining weights are not
// biased. Each drawn candidate is validated against the metadata source; a
// missing or uncomputable beatmap, or a transient fetch failure, is a soft
// miss and the candidate is dropped before the next draw. After MaxAttempts
// soft misses, or once the population is exhausted, Sample fails with
// apperr.ErrNoCandidates.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Sampler) Sample(ctx context.Context, req Request) (*models.BareRecommendation, error) {
	start := time.Now()
	rec, err := s.sample(ctx, req)
	metrics.RecordSample(req.Model.String(), sampleOutcome(err), time.Since(start))
	return rec, err
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Sampler) sample(ctx context.Context, req Request) (*models.BareRecommendation, error) {
	if err := apperr.CheckContext(ctx, opSample); err != nil {
		return nil, err
	}
	if !req.Model.Valid() {
		return nil, apperr.InvalidRequest(opSample, "unknown model %d", int(req.Model))
	}

	resolved, err := mods.Resolve(req.Mods, req.NoMod)
	if err != nil {
		return nil, err
	}

	logger := logging.Ctx(ctx).With().
		Str("component", "sampler").
		Int("user_id", int(req.UserID)).
		Stringer("model", req.Model).
		Stringer("constraint", resolved.Constraint).
		Logger()
	if resolved.Stripped != mods.None || len(resolved.Collapsed) > 0 {
		logger.Debug().
			Stringer("requested", req.Mods).
			Stringer("resolved", resolved.Mods).
			Stringer("stripped", resolved.Stripped).
			Int("collapsed", len(resolved.Collapsed)).
			Msg("normalized requested mods")
	}

	exclude, err := s.history.Exclusions(ctx, req.UserID, req.Exclude)
	if err != nil {
		return nil, apperr.FromIO(opSample, err)
	}

	population, err := s.populations.Population(ctx, req.UserID, req.Model.pool())
	if err != nil {
		return nil, apperr.FromIO(opSample, err)
	}

	cands := make([]Candidate, 0, len(population))
	for _, c := range population {
		if !exclude.Contains(c.BeatmapID) {
			cands = append(cands, c)
		}
	}

	for attempt := 0; attempt < s.maxAttempts && len(cands) > 0; attempt++ {
		idx, probability := s.draw(req.Model, cands)
		c := cands[idx]
		set := resolved.Apply(c.Mods)

		_, err := s.meta.Get(ctx, c.BeatmapID, set, req.Locale)
		if err == nil {
			logger.Debug().
				Int("beatmap_id", int(c.BeatmapID)).
				Stringer("mods", set).
				Int("attempt", attempt+1).
				Msg("sampled recommendation")
			return &models.BareRecommendation{
				BeatmapID:   c.BeatmapID,
				Mods:        set,
				Model:       req.Model.String(),
				Probability: probability,
			}, nil
		}
		if !apperr.IsSoft(err) {
			return nil, err
		}

		reason := "transient"
		if apperr.KindOf(err) == apperr.ErrNotFound {
			reason = "not_found"
		}
		metrics.SamplerSoftMisses.WithLabelValues(reason).Inc()
		logger.Debug().Err(err).Int("beatmap_id", int(c.BeatmapID)).Msg("skipping candidate")

		cands[idx] = cands[len(cands)-1]
		cands = cands[:len(cands)-1]
	}

	return nil, apperr.New(opSample, apperr.ErrNoCandidates,
		fmt.Errorf("user %d, model %s: %d candidates left after bounded retries", req.UserID, req.Model, len(cands)))
}

func (s *Sampler) draw(m Model, cands []Candidate) (int, float64) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return m.draw(s.rng, cands)
}

func sampleOutcome(err error) string {
	switch apperr.KindOf(err) {
	case nil:
		if err != nil {
			return "error"
		}
		return "ok"
	case apperr.ErrInvalidRequest:
		return "invalid_request"
	case apperr.ErrNoCandidates:
		return "no_candidates"
	case apperr.ErrCancelled:
		return "cancelled"
	default:
		return "error"
	}
}
