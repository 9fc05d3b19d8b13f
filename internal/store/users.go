// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package store

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/beatmaprec/internal/models"
)

// Key prefixes for per-user records
const (
	optionsKeyPrefix  = "options:"
	versionKeyPrefix  = "version:"
	activityKeyPrefix = "activity:"
	donatorKeyPrefix  = "donator:"
	handleKeyPrefix   = "handle:"
)

func userKey(prefix string, user models.UserID) []byte {
	return []byte(prefix + user.String())
}

// Handles are case-insensitive on the chat network.
func handleKey(prefix, handle string) []byte {
	return []byte(prefix + strings.ToLower(handle))
}

// Options returns the user's options blob, or "" when none was saved.
// The blob format is owned by the caller.
func (s *Store) Options(ctx context.Context, user models.UserID) (string, error) {
	var opts string
	if _, err := s.getJSON(ctx, "store.options", userKey(optionsKeyPrefix, user), &opts); err != nil {
		return "", err
	}
	return opts, nil
}

// SaveOptions stores the user's options blob.
func (s *Store) SaveOptions(ctx context.Context, user models.UserID, opts string) error {
	return s.setJSON(ctx, "store.save_options", userKey(optionsKeyPrefix, user), opts)
}

// LastVisitedVersion returns the last client version seen for a chat handle,
// or -1 when unknown.
func (s *Store) LastVisitedVersion(ctx context.Context, handle string) (int, error) {
	version := -1
	if _, err := s.getJSON(ctx, "store.last_visited_version", handleKey(versionKeyPrefix, handle), &version); err != nil {
		return -1, err
	}
	return version, nil
}

// SetLastVisitedVersion records the client version seen for a chat handle.
func (s *Store) SetLastVisitedVersion(ctx context.Context, handle string, version int) error {
	return s.setJSON(ctx, "store.set_last_visited_version", handleKey(versionKeyPrefix, handle), version)
}

// RegisterActivity records that user was active at the given time.
func (s *Store) RegisterActivity(ctx context.Context, user models.UserID, at time.Time) error {
	return s.setJSON(ctx, "store.register_activity", userKey(activityKeyPrefix, user), at.UTC())
}

// LastActivity returns the user's last registered activity, or the zero
// time when none was registered.
func (s *Store) LastActivity(ctx context.Context, user models.UserID) (time.Time, error) {
	var at time.Time
	if _, err := s.getJSON(ctx, "store.last_activity", userKey(activityKeyPrefix, user), &at); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// Donator returns the user's donator tier; 0 means none.
func (s *Store) Donator(ctx context.Context, user models.UserID) (int, error) {
	var tier int
	if _, err := s.getJSON(ctx, "store.donator", userKey(donatorKeyPrefix, user), &tier); err != nil {
		return 0, err
	}
	return tier, nil
}

// SetDonator stores the user's donator tier.
func (s *Store) SetDonator(ctx context.Context, user models.UserID, tier int) error {
	return s.setJSON(ctx, "store.set_donator", userKey(donatorKeyPrefix, user), tier)
}

// LinkHandle associates a chat handle with a user id.
func (s *Store) LinkHandle(ctx context.Context, handle string, user models.UserID) error {
	return s.setJSON(ctx, "store.link_handle", handleKey(handleKeyPrefix, handle), user)
}

// ResolveHandle returns the user id linked to handle. The boolean is false
// when the handle is unresolved.
func (s *Store) ResolveHandle(ctx context.Context, handle string) (models.UserID, bool, error) {
	var user models.UserID
	found, err := s.getJSON(ctx, "store.resolve_handle", handleKey(handleKeyPrefix, handle), &user)
	if err != nil {
		return 0, false, err
	}
	return user, found, nil
}
