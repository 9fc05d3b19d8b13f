// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package recommend

import (
	"context"
	"sync"

	"github.com/tomtom215/beatmaprec/internal/models"
	"github.com/tomtom215/beatmaprec/internal/mods"
)

// Candidate is one entry of a model population.
type Candidate struct {
	BeatmapID models.BeatmapID `json:"beatmap_id"`

	// Mods is the candidate's own modifier set. It is the sampled mod
	// dimension when the request is unconstrained.
	Mods mods.Set `json:"mods"`

	// Weight is the model's raw preference for this candidate.
	Weight float64 `json:"weight"`
}

// Populations supplies candidate populations. Implementations typically wrap
// a trained model store.
type Populations interface {
	Population(ctx context.Context, user models.UserID, pool Pool) ([]Candidate, error)
}

// StaticPopulations is an in-memory Populations. Skill pools are per user;
// users without one fall back to the global pool.
type StaticPopulations struct {
	mu     sync.RWMutex
	global []Candidate
	skill  map[models.UserID][]Candidate
}

// NewStaticPopulations creates a population set with the given global pool.
func NewStaticPopulations(global []Candidate) *StaticPopulations {
	return &StaticPopulations{
		global: global,
		skill:  make(map[models.UserID][]Candidate),
	}
}

// SetSkill replaces the skill pool of user.
func (p *StaticPopulations) SetSkill(user models.UserID, cands []Candidate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skill[user] = cands
}

// Population implements Populations. The returned slice is shared and must
// not be modified.
func (p *StaticPopulations) Population(_ context.Context, user models.UserID, pool Pool) ([]Candidate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if pool == PoolSkill {
		if cands, ok := p.skill[user]; ok {
			return cands, nil
		}
	}
	return p.global, nil
}
