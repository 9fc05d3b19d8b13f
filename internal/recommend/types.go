// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package recommend

import (
	"context"

	"github.com/tomtom215/beatmaprec/internal/models"
	"github.com/tomtom215/beatmaprec/internal/mods"
)

// Request is a single sampling request.
type Request struct {
	// UserID is the user to recommend for.
	UserID models.UserID

	// Exclude holds beatmaps the caller excludes explicitly, typically the
	// user's top plays. Not modified.
	Exclude models.ExclusionSet

	// Model selects population and weighting.
	Model Model

	// NoMod restricts the recommendation to no modifiers.
	// Mutually exclusive with a non-empty Mods.
	NoMod bool

	// Mods are requested modifiers, added on top of the candidate's own.
	Mods mods.Set

	// Locale is threaded through metadata loading.
	Locale models.Locale
}

// MetadataSource materializes beatmap metadata. The sampler uses it only to
// validate that a candidate is computable.
type MetadataSource interface {
	Get(ctx context.Context, id models.BeatmapID, set mods.Set, locale models.Locale) (*models.BeatmapMeta, error)
}

// History supplies the exclusion set derived from a user's recommendation
// history.
type History interface {
	Exclusions(ctx context.Context, user models.UserID, explicit models.ExclusionSet) (models.ExclusionSet, error)
}

// Ledger is the full history contract the Engine needs.
type Ledger interface {
	History
	Record(ctx context.Context, user models.UserID, beatmap models.BeatmapID, set mods.Set) (models.GivenRecommendation, error)
	ForgetAll(ctx context.Context, user models.UserID) (int, error)
}

// IdentityResolver maps a chat handle to a user id. The boolean is false
// when the handle is unresolved.
type IdentityResolver interface {
	ResolveHandle(ctx context.Context, handle string) (models.UserID, bool, error)
}
