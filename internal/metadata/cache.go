// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/cache"
	"github.com/tomtom215/beatmaprec/internal/gamedata"
	"github.com/tomtom215/beatmaprec/internal/metrics"
	"github.com/tomtom215/beatmaprec/internal/models"
	"github.com/tomtom215/beatmaprec/internal/mods"
)

const opGet = "metadata.get"

// Config holds metadata cache settings.
type Config struct {
	// Capacity bounds the number of completed entries (positive and negative).
	Capacity int

	// TTL expires positive entries. Zero keeps them for the process lifetime.
	TTL time.Duration

	// NegativeTTL expires not-found entries. Zero keeps them for the process
	// lifetime.
	NegativeTTL time.Duration

	// FetchTimeout bounds one computation independently of its callers.
	// Zero disables the bound.
	FetchTimeout time.Duration

	// WarmConcurrency bounds the number of parallel computations in Warm.
	WarmConcurrency int
}

// DefaultConfig returns the default cache settings.
func DefaultConfig() Config {
	return Config{
		Capacity:        50000,
		TTL:             0,
		NegativeTTL:     time.Hour,
		FetchTimeout:    30 * time.Second,
		WarmConcurrency: 4,
	}
}

// Key identifies one cache entry. Mods is always canonical.
type Key struct {
	BeatmapID models.BeatmapID
	Mods      mods.Set
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("%d+%s", k.BeatmapID, k.Mods)
}

// entry is a completed computation. Exactly one of meta and err is set.
type entry struct {
	meta *models.BeatmapMeta
	err  error
}

// flight is one in-flight computation shared by all waiters on its key.
// waiters and finished are guarded by Cache.mu; meta and err are written
// once before done is closed.
type flight struct {
	done     chan struct{}
	cancel   context.CancelFunc
	waiters  int
	finished bool

	meta *models.BeatmapMeta
	err  error
}

// Cache is the coalescing beatmap metadata cache.
type Cache struct {
	client    gamedata.Client
	estimator Estimator
	cfg       Config
	logger    zerolog.Logger

	mu      sync.Mutex
	entries *cache.LRU[Key, entry]
	flights map[Key]*flight
}

// New creates a metadata cache backed by client and estimator.
func New(client gamedata.Client, estimator Estimator, cfg Config, logger zerolog.Logger) *Cache {
	if cfg.WarmConcurrency < 1 {
		cfg.WarmConcurrency = 1
	}
	return &Cache{
		client:    client,
		estimator: estimator,
		cfg:       cfg,
		logger:    logger.With().Str("component", "metadata_cache").Logger(),
		entries:   cache.NewLRU[Key, entry](cfg.Capacity, cfg.TTL),
		flights:   make(map[Key]*flight),
	}
}

// Get returns the metadata for beatmap id under set. The set is
// canonicalized before lookup, so equivalent spellings share one entry.
// The returned value carries locale and must not be modified.
//
// Errors are classified: apperr.ErrNotFound for missing or uncomputable
// beatmaps (cached), apperr.ErrTransient for fetch failures (not cached),
// apperr.ErrCancelled when ctx ends first.
func (c *Cache) Get(ctx context.Context, id models.BeatmapID, set mods.Set, locale models.Locale) (*models.BeatmapMeta, error) {
	if err := apperr.CheckContext(ctx, opGet); err != nil {
		return nil, err
	}
	key := Key{BeatmapID: id, Mods: mods.Canonical(set)}

	c.mu.Lock()
	if e, ok := c.entries.Get(key); ok {
		c.mu.Unlock()
		if e.err != nil {
			metrics.MetaCacheRequests.WithLabelValues(metrics.ResultNegativeHit).Inc()
			return nil, e.err
		}
		metrics.MetaCacheRequests.WithLabelValues(metrics.ResultHit).Inc()
		return e.meta.WithLocale(locale), nil
	}

	f, ok := c.flights[key]
	if ok {
		f.waiters++
		metrics.MetaCacheRequests.WithLabelValues(metrics.ResultCoalesced).Inc()
	} else {
		f = c.startFlight(key)
		metrics.MetaCacheRequests.WithLabelValues(metrics.ResultMiss).Inc()
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		return f.meta.WithLocale(locale), nil
	case <-ctx.Done():
		c.leave(key, f)
		return nil, apperr.New(opGet, apperr.ErrCancelled, ctx.Err())
	}
}

// startFlight registers and launches a computation for key. c.mu must be held.
func (c *Cache) startFlight(key Key) *flight {
	fctx, cancel := context.WithCancel(context.Background())
	if c.cfg.FetchTimeout > 0 {
		fctx, cancel = withTimeout(fctx, cancel, c.cfg.FetchTimeout)
	}
	f := &flight{
		done:    make(chan struct{}),
		cancel:  cancel,
		waiters: 1,
	}
	c.flights[key] = f
	metrics.MetaCacheInflight.Inc()

	go c.run(fctx, key, f)
	return f
}

// withTimeout layers a deadline over parent and returns a cancel that
// releases both contexts.
func withTimeout(parent context.Context, parentCancel context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		cancel()
		parentCancel()
	}
}

// leave detaches one waiter. When the last waiter of an unfinished flight
// leaves, the computation is cancelled and its marker removed.
func (c *Cache) leave(key Key, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f.waiters--
	if f.waiters > 0 || f.finished {
		return
	}
	f.cancel()
	if c.flights[key] == f {
		delete(c.flights, key)
	}
	c.logger.Debug().Stringer("key", key).Msg("abandoned metadata computation")
}

// run computes key and publishes the result to every waiter.
func (c *Cache) run(ctx context.Context, key Key, f *flight) {
	start := time.Now()
	meta, err := c.compute(ctx, key)
	if err != nil && apperr.KindOf(err) == apperr.ErrCancelled && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = apperr.New(opGet, apperr.ErrTransient, fmt.Errorf("computation for %s timed out after %s", key, c.cfg.FetchTimeout))
	}

	c.mu.Lock()
	// Waiters that are still attached never cancelled; whatever stopped the
	// computation is a fetch failure from their point of view.
	if f.waiters > 0 && apperr.KindOf(err) == apperr.ErrCancelled {
		err = apperr.New(opGet, apperr.ErrTransient, fmt.Errorf("computation for %s stopped: %v", key, err))
	}
	metrics.RecordMetaCompute(outcomeOf(err), time.Since(start))
	f.finished = true
	f.meta, f.err = meta, err
	// A detached flight (abandoned or invalidated) must not populate the
	// cache: a newer flight may already own the key.
	if c.flights[key] == f {
		switch {
		case err == nil:
			c.entries.Add(key, entry{meta: meta})
		case apperr.KindOf(err) == apperr.ErrNotFound:
			c.entries.AddWithTTL(key, entry{err: err}, c.cfg.NegativeTTL)
		}
		delete(c.flights, key)
	}
	metrics.MetaCacheEntries.Set(float64(c.entries.Len()))
	close(f.done)
	c.mu.Unlock()

	f.cancel()
	metrics.MetaCacheInflight.Dec()
}

// compute fetches the beatmap and estimates it for key.Mods or the nearest
// satisfiable subset.
func (c *Cache) compute(ctx context.Context, key Key) (*models.BeatmapMeta, error) {
	beatmap, err := c.client.Beatmap(ctx, key.BeatmapID)
	if err != nil {
		return nil, apperr.FromIO(opGet, err)
	}

	for _, candidate := range mods.FallbackOrder(key.Mods) {
		if err := apperr.CheckContext(ctx, opGet); err != nil {
			return nil, err
		}
		values, err := c.estimator.Estimate(ctx, beatmap, candidate)
		if errors.Is(err, ErrUnsupportedMods) {
			continue
		}
		if err != nil {
			return nil, apperr.FromIO(opGet, err)
		}

		approximate := candidate != key.Mods
		if approximate {
			metrics.MetaFallbacks.Inc()
			c.logger.Debug().
				Stringer("key", key).
				Stringer("estimated", candidate).
				Msg("using nearest satisfiable modifier set")
		}
		return &models.BeatmapMeta{
			Beatmap: beatmap,
			Estimates: models.PercentageEstimates{
				Requested:      key.Mods,
				Mods:           candidate,
				Approximate:    approximate,
				EstimateValues: values,
			},
		}, nil
	}

	return nil, apperr.NotFound(opGet, "beatmap %d has no estimable modifier subset of %s", key.BeatmapID, key.Mods)
}

func outcomeOf(err error) string {
	switch apperr.KindOf(err) {
	case nil:
		if err != nil {
			return "transient"
		}
		return "ok"
	case apperr.ErrNotFound:
		return "not_found"
	case apperr.ErrCancelled:
		return "cancelled"
	default:
		return "transient"
	}
}

// Invalidate drops every entry of beatmap id and detaches its in-flight
// computations so their results are not cached. It returns the number of
// completed entries removed.
func (c *Cache) Invalidate(id models.BeatmapID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.entries.RemoveFunc(func(k Key) bool { return k.BeatmapID == id })
	for k := range c.flights {
		if k.BeatmapID == id {
			delete(c.flights, k)
		}
	}
	metrics.MetaCacheEntries.Set(float64(c.entries.Len()))

	c.logger.Info().Int("beatmap_id", int(id)).Int("removed", removed).Msg("invalidated beatmap metadata")
	return removed
}

// Warm prefetches ids under set with bounded concurrency. Missing or
// failing beatmaps are logged and skipped; only cancellation is returned.
func (c *Cache) Warm(ctx context.Context, ids []models.BeatmapID, set mods.Set) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.WarmConcurrency)

	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_, err := c.Get(gctx, id, set, "")
			if err == nil {
				return nil
			}
			if apperr.KindOf(err) == apperr.ErrCancelled {
				return err
			}
			c.logger.Debug().Err(err).Int("beatmap_id", int(id)).Msg("warm-up skipped beatmap")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return apperr.CheckContext(ctx, "metadata.warm")
}

// CleanupExpired removes expired entries and returns how many were removed.
// In-flight computations are unaffected.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.entries.CleanupExpired()
	if n > 0 {
		metrics.MetaCacheSwept.Add(float64(n))
	}
	metrics.MetaCacheEntries.Set(float64(c.entries.Len()))
	return n
}

// Len returns the number of completed entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Inflight returns the number of computations currently registered.
func (c *Cache) Inflight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.flights)
}

// Stats returns hit/miss statistics of the completed-entry store.
func (c *Cache) Stats() cache.Stats {
	return c.entries.Stats()
}
