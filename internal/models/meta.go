// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package models

import "github.com/tomtom215/beatmaprec/internal/mods"

// Accuracies are the accuracy levels PercentageEstimates are computed for.
var Accuracies = [4]float64{95, 98, 99, 100}

// EstimateValues is the numeric tuple an estimator produces for one beatmap
// under one modifier set.
type EstimateValues struct {
	// StarDifficulty is the modded star rating.
	StarDifficulty float64 `json:"star_difficulty"`

	// PP holds performance estimates indexed like Accuracies.
	PP [4]float64 `json:"pp"`
}

// PercentageEstimates are the computed estimates for one beatmap.
// Immutable after creation.
type PercentageEstimates struct {
	// Requested is the canonical modifier set the caller asked for.
	Requested mods.Set `json:"requested"`

	// Mods is the set the values were actually computed for.
	Mods mods.Set `json:"mods"`

	// Approximate is true when Mods differs from Requested because the exact
	// combination could not be estimated.
	Approximate bool `json:"approximate"`

	EstimateValues
}

// PPFor returns the estimate for one of the Accuracies, or false.
func (p PercentageEstimates) PPFor(accuracy float64) (float64, bool) {
	for i, a := range Accuracies {
		if a == accuracy {
			return p.PP[i], true
		}
	}
	return 0, false
}

// BeatmapMeta is a beatmap together with its estimates for one resolved
// modifier set. It is the unit the metadata cache returns.
type BeatmapMeta struct {
	Beatmap   *Beatmap            `json:"beatmap"`
	Estimates PercentageEstimates `json:"estimates"`

	// Locale is the language context the caller loaded this meta for.
	Locale Locale `json:"locale,omitempty"`
}

// WithLocale returns a shallow copy carrying loc. Cached values are shared
// between callers, so the copy keeps per-call data off the shared value.
func (m *BeatmapMeta) WithLocale(loc Locale) *BeatmapMeta {
	cp := *m
	cp.Locale = loc
	return &cp
}
