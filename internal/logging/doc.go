// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

// Package logging provides zerolog-based structured logging for Beatmaprec.
//
// JSON output is the production default; console output is available for
// local runs.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int64("beatmap_id", id).Msg("metadata computed")
//	logging.Ctx(ctx).Warn().Err(err).Msg("sampling failed")
//
// # Configuration
//
// Environment Variables (read by the config package):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Component Loggers
//
// Components take a zerolog.Logger at construction and tag it:
//
//	logger := logging.WithComponent("metadata")
//
// # Correlation IDs
//
// EnsureCorrelationID attaches a UUID to a request context when the caller
// did not supply one; Ctx returns a logger carrying it.
//
// # slog Adapter
//
// suture's event hook and watermill's logger take a *slog.Logger:
//
//	slogLogger := logging.NewSlogLogger()
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
