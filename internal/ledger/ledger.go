// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

// Package ledger tracks which recommendations each user has already been given.
//
// The retention window is applied when reading: rows older than the window
// stay in storage for analytics but no longer exclude their beatmaps.
// ForgetAll is a hard delete.
package ledger

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/metrics"
	"github.com/tomtom215/beatmaprec/internal/models"
	"github.com/tomtom215/beatmaprec/internal/mods"
)

// DefaultWindow is the read-time retention window.
const DefaultWindow = 14 * 24 * time.Hour

// Store is the persistence the ledger needs.
type Store interface {
	AppendGiven(ctx context.Context, rec models.GivenRecommendation) error
	GivenSince(ctx context.Context, user models.UserID, since time.Time) ([]models.GivenRecommendation, error)
	DeleteGiven(ctx context.Context, user models.UserID) (int, error)
}

// Config configures the ledger.
type Config struct {
	// Window bounds Recent. Zero means DefaultWindow.
	Window time.Duration
}

// Ledger is the given-recommendation ledger.
type Ledger struct {
	store     Store
	window    time.Duration
	publisher message.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates a ledger. publisher may be nil to disable audit events.
func New(store Store, cfg Config, publisher message.Publisher, logger zerolog.Logger) *Ledger {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return &Ledger{
		store:     store,
		window:    cfg.Window,
		publisher: publisher,
		logger:    logger.With().Str("component", "ledger").Logger(),
		now:       time.Now,
	}
}

// Window returns the retention window.
func (l *Ledger) Window() time.Duration {
	return l.window
}

// Recent returns the user's given recommendations inside the window,
// newest first.
func (l *Ledger) Recent(ctx context.Context, user models.UserID) ([]models.GivenRecommendation, error) {
	recs, err := l.store.GivenSince(ctx, user, l.now().Add(-l.window))
	metrics.RecordLedgerOp("recent", err)
	if err != nil {
		return nil, apperr.FromIO("ledger.recent", err)
	}
	return recs, nil
}

// Record stores that beatmap was recommended to user with set and returns
// the persisted row.
func (l *Ledger) Record(ctx context.Context, user models.UserID, beatmap models.BeatmapID, set mods.Set) (models.GivenRecommendation, error) {
	rec := models.GivenRecommendation{
		UserID:    user,
		BeatmapID: beatmap,
		Mods:      set,
		GivenAt:   l.now().UTC(),
	}
	err := l.store.AppendGiven(ctx, rec)
	metrics.RecordLedgerOp("record", err)
	if err != nil {
		return models.GivenRecommendation{}, apperr.FromIO("ledger.record", err)
	}

	l.publish(TopicGiven, user, GivenEvent{Recommendation: rec})
	return rec, nil
}

// ForgetAll deletes the user's entire history and returns the number of
// rows removed. Recent returns nothing for the user afterwards.
func (l *Ledger) ForgetAll(ctx context.Context, user models.UserID) (int, error) {
	n, err := l.store.DeleteGiven(ctx, user)
	metrics.RecordLedgerOp("forget", err)
	if err != nil {
		return 0, apperr.FromIO("ledger.forget_all", err)
	}

	l.logger.Info().Int("user_id", int(user)).Int("removed", n).Msg("forgot recommendation history")
	l.publish(TopicForgotten, user, ForgottenEvent{UserID: user, Removed: n, At: l.now().UTC()})
	return n, nil
}

// Exclusions returns explicit plus every beatmap in the user's recent
// history. explicit is not modified.
func (l *Ledger) Exclusions(ctx context.Context, user models.UserID, explicit models.ExclusionSet) (models.ExclusionSet, error) {
	recent, err := l.Recent(ctx, user)
	if err != nil {
		return nil, err
	}

	out := make(models.ExclusionSet, len(explicit)+len(recent))
	for id := range explicit {
		out.Add(id)
	}
	for _, rec := range recent {
		out.Add(rec.BeatmapID)
	}
	return out, nil
}
