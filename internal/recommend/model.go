// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package recommend

import (
	"math"
	"math/rand"
	"strings"

	"github.com/tomtom215/beatmaprec/internal/apperr"
)

// Model selects the candidate population and the weighting strategy used to
// draw from it.
type Model int

const (
	// ModelGamma draws from the skill-matched pool proportionally to weight.
	ModelGamma Model = iota

	// ModelBeta draws from the global pool with square-root flattened
	// weights, favouring variety over fit.
	ModelBeta

	// ModelAlpha picks the highest-weighted skill-matched candidate.
	// Equal weights are broken uniformly at random.
	ModelAlpha
)

// Models lists every model.
var Models = []Model{ModelGamma, ModelBeta, ModelAlpha}

// String returns the model's name.
func (m Model) String() string {
	switch m {
	case ModelGamma:
		return "gamma"
	case ModelBeta:
		return "beta"
	case ModelAlpha:
		return "alpha"
	default:
		return "unknown"
	}
}

// Valid reports whether m names a known model.
func (m Model) Valid() bool {
	return m >= ModelGamma && m <= ModelAlpha
}

// ParseModel parses a model name as typed in chat. Matching is
// case-insensitive.
func ParseModel(s string) (Model, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Models {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, apperr.InvalidRequest("recommend.parse_model", "unknown model %q", s)
}

// Pool identifies a candidate population.
type Pool int

const (
	// PoolSkill holds candidates matched to the user's skill.
	PoolSkill Pool = iota

	// PoolGlobal holds candidates independent of the user.
	PoolGlobal
)

// String returns the pool's name.
func (p Pool) String() string {
	if p == PoolGlobal {
		return "global"
	}
	return "skill"
}

// pool returns the population the model draws from.
func (m Model) pool() Pool {
	if m == ModelBeta {
		return PoolGlobal
	}
	return PoolSkill
}

// weight returns the model's effective weight for a candidate. Non-positive
// and non-finite raw weights count as 0.
func (m Model) weight(raw float64) float64 {
	if !(raw > 0) || math.IsInf(raw, 1) {
		return 0
	}
	if m == ModelBeta {
		return math.Sqrt(raw)
	}
	return raw
}

// draw picks an index into cands and returns the probability it had of being
// picked. cands must be non-empty.
func (m Model) draw(rng *rand.Rand, cands []Candidate) (int, float64) {
	if m == ModelAlpha {
		return drawGreedy(rng, m, cands)
	}

	total := 0.0
	for _, c := range cands {
		total += m.weight(c.Weight)
	}
	if total <= 0 {
		return rng.Intn(len(cands)), 1 / float64(len(cands))
	}

	r := rng.Float64() * total
	last := 0
	for i, c := range cands {
		w := m.weight(c.Weight)
		if w == 0 {
			continue
		}
		last = i
		if r < w {
			return i, w / total
		}
		r -= w
	}
	// Rounding can leave r marginally above the final weight.
	return last, m.weight(cands[last].Weight) / total
}

// drawGreedy picks uniformly among the candidates sharing the highest weight.
func drawGreedy(rng *rand.Rand, m Model, cands []Candidate) (int, float64) {
	best := math.Inf(-1)
	var ties []int
	for i, c := range cands {
		w := m.weight(c.Weight)
		switch {
		case w > best:
			best = w
			ties = append(ties[:0], i)
		case w == best:
			ties = append(ties, i)
		}
	}
	if len(ties) == 0 {
		return rng.Intn(len(cands)), 1 / float64(len(cands))
	}
	return ties[rng.Intn(len(ties))], 1 / float64(len(ties))
}
