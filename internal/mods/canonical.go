// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package mods

import (
	"math/bits"
	"sort"
)

// Collapse records one canonicalization decision.
type Collapse struct {
	// Dropped is the bit that was removed.
	Dropped Set `json:"dropped"`

	// Kept is the bit that represents the combination afterwards.
	Kept Set `json:"kept"`

	// Reason is a short human-readable explanation.
	Reason string `json:"reason"`
}

// implied maps redundant bits to the bit they imply.
var implied = []struct {
	from, to Set
	reason   string
}{
	{Nightcore, DoubleTime, "nightcore implies double time"},
	{Perfect, SuddenDeath, "perfect implies sudden death"},
}

// exclusive lists mutually exclusive pairs as {dominant, recessive}.
var exclusive = []struct {
	dominant, recessive Set
}{
	{HardRock, Easy},
	{DoubleTime, HalfTime},
}

// Canonicalize normalizes s into its canonical estimable form.
// It returns the canonical set, the bits stripped because they do not affect
// estimates, and the collapse decisions taken along the way.
func Canonicalize(s Set) (canon, stripped Set, collapsed []Collapse) {
	for _, im := range implied {
		if s&im.from != 0 {
			s = s&^im.from | im.to
			collapsed = append(collapsed, Collapse{Dropped: im.from, Kept: im.to, Reason: im.reason})
		}
	}
	for _, ex := range exclusive {
		if s.Has(ex.dominant | ex.recessive) {
			s &^= ex.recessive
			collapsed = append(collapsed, Collapse{Dropped: ex.recessive, Kept: ex.dominant, Reason: "mutually exclusive"})
		}
	}
	return s & Estimable, s &^ Estimable, collapsed
}

// Canonical returns only the canonical form of s.
func Canonical(s Set) Set {
	canon, _, _ := Canonicalize(s)
	return canon
}

// Merge overlays requested mods onto a base combination. Requested bits win
// conflicts: the base loses any bit that is mutually exclusive with one of
// the overlay's bits.
func Merge(base, overlay Set) Set {
	base = Canonical(base)
	overlay = Canonical(overlay)
	for _, ex := range exclusive {
		if overlay&ex.dominant != 0 {
			base &^= ex.recessive
		}
		if overlay&ex.recessive != 0 {
			base &^= ex.dominant
		}
	}
	return Canonical(base | overlay)
}

// FallbackOrder lists the candidate sets to try when estimates for s cannot
// be computed exactly. Candidates are the subsets of canonical s, ordered by
// the number of dropped bits ascending; ties prefer the numerically larger
// subset, which keeps the speed mods (the highest bits) longest. The first
// element is always s itself and the last is None.
func FallbackOrder(s Set) []Set {
	s = Canonical(s)
	subsets := make([]Set, 0, 1<<bits.OnesCount64(uint64(s)))
	for sub := s; ; sub = (sub - 1) & s {
		subsets = append(subsets, sub)
		if sub == 0 {
			break
		}
	}
	sort.Slice(subsets, func(i, j int) bool {
		di := bits.OnesCount64(uint64(s ^ subsets[i]))
		dj := bits.OnesCount64(uint64(s ^ subsets[j]))
		if di != dj {
			return di < dj
		}
		return subsets[i] > subsets[j]
	})
	return subsets
}
