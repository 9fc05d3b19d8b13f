// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package metadata

import (
	"context"
	"errors"

	"github.com/tomtom215/beatmaprec/internal/models"
	"github.com/tomtom215/beatmaprec/internal/mods"
)

// ErrUnsupportedMods is returned by an Estimator that cannot compute values
// for the given modifier set. The cache then tries the next fallback subset.
var ErrUnsupportedMods = errors.New("unsupported modifier combination")

// Estimator computes difficulty and performance values for one beatmap
// under one canonical modifier set.
type Estimator interface {
	Estimate(ctx context.Context, beatmap *models.Beatmap, set mods.Set) (models.EstimateValues, error)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(ctx context.Context, beatmap *models.Beatmap, set mods.Set) (models.EstimateValues, error)

// Estimate implements Estimator.
func (f EstimatorFunc) Estimate(ctx context.Context, beatmap *models.Beatmap, set mods.Set) (models.EstimateValues, error) {
	return f(ctx, beatmap, set)
}
