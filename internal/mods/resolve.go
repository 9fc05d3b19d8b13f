// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package mods

import "github.com/tomtom215/beatmaprec/internal/apperr"

// Constraint describes how a recommendation request restricts modifiers.
type Constraint int

const (
	// Unconstrained leaves the modifier dimension free for the model.
	Unconstrained Constraint = iota
	// NoModOnly forces the canonical empty set.
	NoModOnly
	// Requested includes specific mods on top of the model's choice.
	Requested
)

// String returns a human-readable constraint name.
func (c Constraint) String() string {
	switch c {
	case Unconstrained:
		return "unconstrained"
	case NoModOnly:
		return "nomod"
	case Requested:
		return "requested"
	default:
		return "unknown"
	}
}

// Resolved is the outcome of resolving a caller's modifier constraints.
type Resolved struct {
	// Constraint is the kind of restriction in effect.
	Constraint Constraint `json:"constraint"`

	// Mods is the canonical requested set. None unless Constraint is Requested.
	Mods Set `json:"mods"`

	// Stripped holds requested bits ignored because they do not affect estimates.
	Stripped Set `json:"stripped,omitempty"`

	// Collapsed records redundant or conflicting bits that were folded.
	Collapsed []Collapse `json:"collapsed,omitempty"`
}

// Resolve normalizes the requested mods against the no-mod flag.
// Supplying both noMod and non-empty requested mods is an InvalidRequest.
func Resolve(requested Set, noMod bool) (Resolved, error) {
	if noMod && requested != None {
		return Resolved{}, apperr.InvalidRequest("mods.resolve",
			"no-mod flag conflicts with requested mods %s", requested)
	}
	if noMod {
		return Resolved{Constraint: NoModOnly, Mods: None}, nil
	}
	if requested == None {
		return Resolved{Constraint: Unconstrained}, nil
	}

	canon, stripped, collapsed := Canonicalize(requested)
	return Resolved{
		Constraint: Requested,
		Mods:       canon,
		Stripped:   stripped,
		Collapsed:  collapsed,
	}, nil
}

// Apply combines the resolved constraint with a candidate's own mods and
// returns the canonical set to recommend.
func (r Resolved) Apply(candidate Set) Set {
	switch r.Constraint {
	case NoModOnly:
		return None
	case Requested:
		return Merge(candidate, r.Mods)
	default:
		return Canonical(candidate)
	}
}
