// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package models

import (
	"time"

	"github.com/tomtom215/beatmaprec/internal/mods"
)

// BareRecommendation is the output of sampling. It carries no metadata;
// callers resolve estimates lazily if and when they need them.
type BareRecommendation struct {
	BeatmapID BeatmapID `json:"beatmap_id"`
	Mods      mods.Set  `json:"mods"`

	// Model is the name of the model that produced the recommendation.
	Model string `json:"model"`

	// Probability is the chance this candidate had of being drawn.
	Probability float64 `json:"probability"`
}

// GivenRecommendation records that a recommendation was delivered to a user.
// Immutable once written.
type GivenRecommendation struct {
	UserID    UserID    `json:"user_id"`
	BeatmapID BeatmapID `json:"beatmap_id"`
	Mods      mods.Set  `json:"mods"`
	GivenAt   time.Time `json:"given_at"`
}
