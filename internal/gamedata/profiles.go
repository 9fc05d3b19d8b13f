// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package gamedata

import (
	"context"
	"time"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/cache"
	"github.com/tomtom215/beatmaprec/internal/metrics"
	"github.com/tomtom215/beatmaprec/internal/models"
)

// Profiles caches user profiles and serves them subject to a caller-chosen
// maximum staleness.
type Profiles struct {
	client Client
	cache  *cache.LRU[models.UserID, *models.User]
	now    func() time.Time
}

// NewProfiles creates a profile cache holding at most capacity users.
func NewProfiles(client Client, capacity int) *Profiles {
	return &Profiles{
		client: client,
		cache:  cache.NewLRU[models.UserID, *models.User](capacity, 0),
		now:    time.Now,
	}
}

// User returns the profile for id. A cached copy is used when it is at most
// maxAge old; maxAge <= 0 accepts any cached copy. Missing users yield
// apperr.ErrNotFound.
func (p *Profiles) User(ctx context.Context, id models.UserID, maxAge time.Duration) (*models.User, error) {
	if err := apperr.CheckContext(ctx, "gamedata.profiles"); err != nil {
		return nil, err
	}

	if cached, ok := p.cache.Get(id); ok {
		if maxAge <= 0 || p.now().Sub(cached.FetchedAt) <= maxAge {
			metrics.GameDataProfileCache.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.GameDataProfileCache.WithLabelValues("stale").Inc()
	} else {
		metrics.GameDataProfileCache.WithLabelValues("miss").Inc()
	}

	u, err := p.client.User(ctx, id)
	if err != nil {
		return nil, apperr.FromIO("gamedata.profiles", err)
	}

	fresh := *u
	fresh.FetchedAt = p.now()
	p.cache.Add(id, &fresh)
	return &fresh, nil
}

// Forget drops a cached profile.
func (p *Profiles) Forget(id models.UserID) {
	p.cache.Remove(id)
}
