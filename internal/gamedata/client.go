// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

// Package gamedata defines the game-data API contract the engine consumes and
// the resilience layers wrapped around it: a rate limiter, a circuit breaker
// and a user-profile cache honoring a maximum staleness.
//
// The concrete HTTP client lives outside this module; anything implementing
// Client can be plugged in.
package gamedata

import (
	"context"

	"github.com/tomtom215/beatmaprec/internal/models"
)

// Client fetches raw data from the game server.
//
// Implementations return an error classified as apperr.ErrNotFound when the
// beatmap or user does not exist. Any other failure is treated as transient.
type Client interface {
	// Beatmap fetches raw beatmap data by identifier.
	Beatmap(ctx context.Context, id models.BeatmapID) (*models.Beatmap, error)

	// User fetches a player profile by identifier.
	User(ctx context.Context, id models.UserID) (*models.User, error)
}
