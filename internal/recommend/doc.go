// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

// Package recommend implements the recommendation sampler and the engine
// facade used by the chat-command layer.
//
// # Architecture
//
// A request flows through:
//
//   - Mod resolution: the no-mod flag and requested mods are validated and
//     canonicalized (package mods)
//   - Exclusion: explicit exclusions plus the user's recent history
//     (package ledger)
//   - Drawing: a weighted draw from the model's population with excluded
//     beatmaps removed beforehand
//   - Validation: each drawn candidate is probed against the metadata cache;
//     uncomputable candidates are skipped a bounded number of times
//
// The result is a BareRecommendation. Metadata is loaded lazily with
// Engine.Load only when the caller needs to display it.
//
// # Models
//
// Model is a closed enumeration. Each model names a population (skill-matched
// or global) and a weighting:
//
//   - gamma: skill pool, weight-proportional
//   - beta: global pool, square-root flattened weights
//   - alpha: skill pool, highest weight wins, ties broken uniformly
//
// Adding a model means adding a constant and its cases in model.go.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.Deps{
//	    Metadata:    metaCache,
//	    Ledger:      ledger,
//	    Populations: pops,
//	    Resolver:    db,
//	}, recommend.DefaultConfig(), logger)
//
//	rec, err := engine.Recommend(ctx, recommend.Request{
//	    UserID:  userID,
//	    Exclude: topPlays,
//	    Model:   recommend.ModelGamma,
//	    Mods:    mods.Hidden,
//	})
//	switch {
//	case errors.Is(err, apperr.ErrNoCandidates):
//	    // tell the user to forget their history
//	}
//
// # Thread Safety
//
// Sampler and Engine are safe for concurrent use. Requests for the same user
// are expected to be sequential.
package recommend
