// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

// Package mods models gameplay modifier combinations and resolves a caller's
// modifier constraints into the canonical set used as a metadata cache key.
//
// # Bit layout
//
// Bits follow the game's bitwise mod encoding (NoFail = 1, Easy = 2, ...), so a
// Set can be passed to and from the game-data API unchanged.
//
// # Canonicalization
//
// Only the estimate-affecting mods (EZ, HD, HR, DT, HT, FL) survive into a
// canonical Set. Redundant spellings collapse (NC to DT, PF to SD) and
// mutually exclusive pairs keep their dominant member (HR over EZ, DT over
// HT). Every other bit is stripped, and both decisions are reported so
// callers can tell the user what was ignored.
package mods

import (
	"fmt"
	"strings"

	"github.com/tomtom215/beatmaprec/internal/apperr"
)

// Set is a bitmask of gameplay modifiers.
type Set uint64

// Modifier bits.
const (
	NoFail      Set = 1 << 0
	Easy        Set = 1 << 1
	TouchDevice Set = 1 << 2
	Hidden      Set = 1 << 3
	HardRock    Set = 1 << 4
	SuddenDeath Set = 1 << 5
	DoubleTime  Set = 1 << 6
	Relax       Set = 1 << 7
	HalfTime    Set = 1 << 8
	Nightcore   Set = 1 << 9
	Flashlight  Set = 1 << 10
	Autoplay    Set = 1 << 11
	SpunOut     Set = 1 << 12
	Autopilot   Set = 1 << 13
	Perfect     Set = 1 << 14
)

// None is the canonical no-modifier value.
const None Set = 0

// Estimable holds the bits that change difficulty or performance estimates.
const Estimable = Easy | Hidden | HardRock | DoubleTime | HalfTime | Flashlight

// known lists every supported bit with its two-letter code, in bit order.
var known = []struct {
	bit  Set
	code string
}{
	{NoFail, "NF"},
	{Easy, "EZ"},
	{TouchDevice, "TD"},
	{Hidden, "HD"},
	{HardRock, "HR"},
	{SuddenDeath, "SD"},
	{DoubleTime, "DT"},
	{Relax, "RX"},
	{HalfTime, "HT"},
	{Nightcore, "NC"},
	{Flashlight, "FL"},
	{Autoplay, "AT"},
	{SpunOut, "SO"},
	{Autopilot, "AP"},
	{Perfect, "PF"},
}

// Has reports whether every bit of other is set in s.
func (s Set) Has(other Set) bool {
	return s&other == other
}

// String returns the concatenated two-letter codes, or "NM" for None.
// Unknown bits are rendered as a trailing hex value.
func (s Set) String() string {
	if s == None {
		return "NM"
	}
	var b strings.Builder
	rest := s
	for _, k := range known {
		if s&k.bit != 0 {
			b.WriteString(k.code)
			rest &^= k.bit
		}
	}
	if rest != 0 {
		fmt.Fprintf(&b, "+0x%x", uint64(rest))
	}
	return b.String()
}

// Parse converts a mod string such as "HDDT", "+hr" or "NM" into a Set.
func Parse(s string) (Set, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "+")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "NM" {
		return None, nil
	}
	if len(s)%2 != 0 {
		return None, apperr.InvalidRequest("mods.parse", "malformed mod string %q", s)
	}

	var out Set
	for i := 0; i < len(s); i += 2 {
		code := s[i : i+2]
		bit, ok := lookup(code)
		if !ok {
			return None, apperr.InvalidRequest("mods.parse", "unknown mod %q", code)
		}
		out |= bit
	}
	return out, nil
}

func lookup(code string) (Set, bool) {
	for _, k := range known {
		if k.code == code {
			return k.bit, true
		}
	}
	return None, false
}
