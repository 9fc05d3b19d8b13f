// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

/*
Package cache provides a generic, thread-safe LRU with optional TTL.

It backs the beatmap metadata cache and the user profile cache. Both hold
only completed results; in-flight computations are tracked by their owners
and never stored here, so eviction cannot disturb a pending computation.

# Usage

	c := cache.NewLRU[metadata.Key, entry](50000, 0)
	c.Add(key, e)
	if e, ok := c.Get(key); ok {
	    // use e
	}

	// Drop every modifier variant of one beatmap
	c.RemoveFunc(func(k metadata.Key) bool { return k.BeatmapID == id })

# Expiration

Entries expire lazily on Get. A periodic CleanupExpired sweep (see the
supervisor package) reclaims memory held by expired entries nobody reads.
*/
package cache
