// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

// Package models holds the value types shared across the engine: identifiers,
// raw game data, computed beatmap metadata and recommendation records.
package models

import "strconv"

// BeatmapID identifies a chart. It is never mutated and is used as a cache
// and exclusion-set key.
type BeatmapID int

// String implements fmt.Stringer.
func (id BeatmapID) String() string {
	return strconv.Itoa(int(id))
}

// UserID identifies a player account on the game server.
type UserID int

// String implements fmt.Stringer.
func (id UserID) String() string {
	return strconv.Itoa(int(id))
}

// Locale is an opaque language token supplied by the localization layer.
// The engine threads it through metadata loading without interpreting it.
type Locale string

// ExclusionSet is a set of beatmaps that must not be recommended.
type ExclusionSet map[BeatmapID]struct{}

// NewExclusionSet builds a set from ids.
func NewExclusionSet(ids ...BeatmapID) ExclusionSet {
	s := make(ExclusionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s ExclusionSet) Add(id BeatmapID) {
	s[id] = struct{}{}
}

// Contains reports whether id is excluded.
func (s ExclusionSet) Contains(id BeatmapID) bool {
	_, ok := s[id]
	return ok
}
