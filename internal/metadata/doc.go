// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

/*
Package metadata provides the beatmap metadata cache.

The cache maps a canonical (beatmap, modifier set) key to a BeatmapMeta: the
raw beatmap plus its performance estimates for that modifier set. Computing an
entry means one game-data fetch followed by estimation, so the cache is built
around three rules:

  - At most one computation runs per key. Concurrent callers for the same key
    attach to the running computation and all observe its result.
  - A beatmap that does not exist (or for which no modifier subset can be
    estimated) is cached as a negative entry. Transient failures are never
    cached.
  - A caller that gives up only detaches itself. The computation is cancelled
    and its in-flight marker removed when the last waiter leaves, so a later
    call always starts fresh.

Completed entries live in a bounded LRU. In-flight computations are tracked
separately and are never subject to eviction.

# Nearest Satisfiable Fallback

When the estimator cannot handle the exact modifier set, the cache tries the
subsets of that set in mods.FallbackOrder order and returns the first that
succeeds with Estimates.Approximate set:

	meta, err := c.Get(ctx, 77, mods.HardRock|mods.DoubleTime, "en")
	if meta.Estimates.Approximate {
	    // values were computed for meta.Estimates.Mods
	}

# Thread Safety

All methods are safe for concurrent use.
*/
package metadata
