// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package metadata

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/gamedata"
	"github.com/tomtom215/beatmaprec/internal/metrics"
	"github.com/tomtom215/beatmaprec/internal/models"
	"github.com/tomtom215/beatmaprec/internal/mods"
)

// stubClient serves beatmaps from a map. When gate is non-nil every fetch
// blocks until gate is closed or the fetch context ends.
type stubClient struct {
	mu       sync.Mutex
	beatmaps map[models.BeatmapID]*models.Beatmap
	failures int // number of leading calls that fail with an I/O error
	gate     chan struct{}
	calls    atomic.Int32
}

func newStubClient(ids ...models.BeatmapID) *stubClient {
	s := &stubClient{beatmaps: make(map[models.BeatmapID]*models.Beatmap)}
	for _, id := range ids {
		s.beatmaps[id] = &models.Beatmap{ID: id, Title: "map " + id.String(), StarDifficulty: 5}
	}
	return s
}

func (s *stubClient) Beatmap(ctx context.Context, id models.BeatmapID) (*models.Beatmap, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return nil, io.ErrUnexpectedEOF
	}
	bm, ok := s.beatmaps[id]
	if !ok {
		return nil, apperr.NotFound("stub.beatmap", "beatmap %d", id)
	}
	return bm, nil
}

func (s *stubClient) User(_ context.Context, id models.UserID) (*models.User, error) {
	return nil, apperr.NotFound("stub.user", "user %d", id)
}

// supportOnly returns an estimator that accepts only the listed sets for
// every beatmap except those in none, which accept nothing.
func supportOnly(sets []mods.Set, none ...models.BeatmapID) Estimator {
	return EstimatorFunc(func(_ context.Context, bm *models.Beatmap, set mods.Set) (models.EstimateValues, error) {
		for _, id := range none {
			if bm.ID == id {
				return models.EstimateValues{}, ErrUnsupportedMods
			}
		}
		for _, s := range sets {
			if s == set {
				return models.EstimateValues{
					StarDifficulty: bm.StarDifficulty + float64(set),
					PP:             [4]float64{100, 120, 130, 150},
				}, nil
			}
		}
		return models.EstimateValues{}, ErrUnsupportedMods
	})
}

func allMods() Estimator {
	return EstimatorFunc(func(_ context.Context, bm *models.Beatmap, set mods.Set) (models.EstimateValues, error) {
		return models.EstimateValues{StarDifficulty: bm.StarDifficulty, PP: [4]float64{1, 2, 3, 4}}, nil
	})
}

func newTestCache(t *testing.T, client *stubClient, est Estimator) *Cache {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Capacity = 100
	cfg.FetchTimeout = 0
	return New(client, est, cfg, zerolog.Nop())
}

// waitForWaiters blocks until the flight for key has n waiters.
func waitForWaiters(t *testing.T, c *Cache, key Key, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		f, ok := c.flights[key]
		got := 0
		if ok {
			got = f.waiters
		}
		c.mu.Unlock()
		if got == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("flight %s never reached %d waiters", key, n)
}

func TestGet_CoalescesConcurrentCallers(t *testing.T) {
	client := newStubClient(1)
	client.gate = make(chan struct{})
	c := newTestCache(t, client, allMods())
	ctx := context.Background()

	const callers = 10
	key := Key{BeatmapID: 1, Mods: mods.Hidden | mods.DoubleTime}

	var wg sync.WaitGroup
	results := make([]*models.BeatmapMeta, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Half the callers spell the key differently; NC canonicalizes to DT.
			set := mods.Hidden | mods.DoubleTime
			if i%2 == 1 {
				set = mods.Hidden | mods.Nightcore
			}
			results[i], errs[i] = c.Get(ctx, 1, set, "")
		}(i)
	}

	waitForWaiters(t, c, key, callers)
	close(client.gate)
	wg.Wait()

	if got := client.calls.Load(); got != 1 {
		t.Fatalf("external fetches = %d, want 1", got)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: error = %v", i, errs[i])
		}
		if results[i].Estimates != results[0].Estimates {
			t.Errorf("caller %d observed different estimates", i)
		}
	}
	if c.Inflight() != 0 {
		t.Errorf("Inflight() = %d, want 0", c.Inflight())
	}
}

func TestGet_NotFoundIsCached(t *testing.T) {
	client := newStubClient()
	c := newTestCache(t, client, allMods())
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.MetaCacheRequests.WithLabelValues(metrics.ResultNegativeHit))

	for i := 0; i < 2; i++ {
		_, err := c.Get(ctx, 999, mods.None, "")
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("call %d: error = %v, want NotFound", i, err)
		}
	}
	if got := client.calls.Load(); got != 1 {
		t.Errorf("external fetches = %d, want 1", got)
	}
	after := testutil.ToFloat64(metrics.MetaCacheRequests.WithLabelValues(metrics.ResultNegativeHit))
	if after-before != 1 {
		t.Errorf("negative hits delta = %v, want 1", after-before)
	}
}

func TestGet_FallbackIsApproximate(t *testing.T) {
	client := newStubClient(77)
	c := newTestCache(t, client, supportOnly([]mods.Set{mods.None, mods.HardRock}))

	meta, err := c.Get(context.Background(), 77, mods.HardRock|mods.DoubleTime, "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	est := meta.Estimates
	if !est.Approximate {
		t.Error("Approximate = false, want true")
	}
	if est.Requested != mods.HardRock|mods.DoubleTime {
		t.Errorf("Requested = %s", est.Requested)
	}
	if est.Mods != mods.HardRock {
		t.Errorf("Mods = %s, want HR", est.Mods)
	}
	if est.StarDifficulty != 5+float64(mods.HardRock) {
		t.Errorf("StarDifficulty = %v, want the HR estimate", est.StarDifficulty)
	}
}

func TestGet_ExactIsNotApproximate(t *testing.T) {
	client := newStubClient(77)
	c := newTestCache(t, client, allMods())

	meta, err := c.Get(context.Background(), 77, mods.HardRock, "")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Estimates.Approximate || meta.Estimates.Mods != mods.HardRock {
		t.Errorf("Estimates = %+v", meta.Estimates)
	}
}

func TestGet_UncomputableIsNotFound(t *testing.T) {
	client := newStubClient(55)
	c := newTestCache(t, client, supportOnly([]mods.Set{mods.None}, 55))

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), 55, mods.Hidden, "")
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("call %d: error = %v, want NotFound", i, err)
		}
	}
	if got := client.calls.Load(); got != 1 {
		t.Errorf("external fetches = %d, want 1", got)
	}
}

func TestGet_TransientIsNotCached(t *testing.T) {
	client := newStubClient(5)
	client.failures = 1
	c := newTestCache(t, client, allMods())
	ctx := context.Background()

	_, err := c.Get(ctx, 5, mods.None, "")
	if !errors.Is(err, apperr.ErrTransient) {
		t.Fatalf("first call error = %v, want Transient", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after transient failure, want 0", c.Len())
	}

	if _, err := c.Get(ctx, 5, mods.None, ""); err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if got := client.calls.Load(); got != 2 {
		t.Errorf("external fetches = %d, want 2", got)
	}
}

func TestGet_CancelledCallerLeavesNoMarker(t *testing.T) {
	client := newStubClient(3)
	client.gate = make(chan struct{})
	c := newTestCache(t, client, allMods())
	key := Key{BeatmapID: 3, Mods: mods.None}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, 3, mods.None, "")
		errc <- err
	}()

	waitForWaiters(t, c, key, 1)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, apperr.ErrCancelled) {
			t.Fatalf("error = %v, want Cancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller was not released")
	}

	if c.Inflight() != 0 {
		t.Fatalf("Inflight() = %d, want 0 after last waiter left", c.Inflight())
	}

	// A fresh call starts a new computation instead of waiting forever.
	close(client.gate)
	if _, err := c.Get(context.Background(), 3, mods.None, ""); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if got := client.calls.Load(); got != 2 {
		t.Errorf("external fetches = %d, want 2", got)
	}
}

func TestGet_OneCancelledWaiterDoesNotAffectOthers(t *testing.T) {
	client := newStubClient(4)
	client.gate = make(chan struct{})
	c := newTestCache(t, client, allMods())
	key := Key{BeatmapID: 4, Mods: mods.None}

	cancelled, cancel := context.WithCancel(context.Background())
	cancelErr := make(chan error, 1)
	go func() {
		_, err := c.Get(cancelled, 4, mods.None, "")
		cancelErr <- err
	}()

	stayErr := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), 4, mods.None, "")
		stayErr <- err
	}()

	waitForWaiters(t, c, key, 2)
	cancel()
	if err := <-cancelErr; !errors.Is(err, apperr.ErrCancelled) {
		t.Fatalf("cancelled waiter error = %v", err)
	}
	waitForWaiters(t, c, key, 1)

	close(client.gate)
	if err := <-stayErr; err != nil {
		t.Fatalf("remaining waiter error = %v", err)
	}
	if got := client.calls.Load(); got != 1 {
		t.Errorf("external fetches = %d, want 1", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestGet_DifferentKeysDoNotBlock(t *testing.T) {
	blocked := newStubClient(1, 2)
	blocked.gate = make(chan struct{})
	defer close(blocked.gate)
	c := newTestCache(t, blocked, allMods())

	go func() {
		_, _ = c.Get(context.Background(), 1, mods.None, "")
	}()
	waitForWaiters(t, c, Key{BeatmapID: 1}, 1)

	// Key 2 is seeded directly: its fetch would hit the same gate.
	c.mu.Lock()
	c.entries.Add(Key{BeatmapID: 2}, entry{meta: &models.BeatmapMeta{Beatmap: &models.Beatmap{ID: 2}}})
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), 2, mods.None, "")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("lookup of an unrelated key blocked behind an in-flight computation")
	}
}

func TestGet_LocaleIsPerCall(t *testing.T) {
	c := newTestCache(t, newStubClient(8), allMods())
	ctx := context.Background()

	en, err := c.Get(ctx, 8, mods.None, "en")
	if err != nil {
		t.Fatal(err)
	}
	de, err := c.Get(ctx, 8, mods.None, "de")
	if err != nil {
		t.Fatal(err)
	}
	if en.Locale != "en" || de.Locale != "de" {
		t.Errorf("locales = %q, %q", en.Locale, de.Locale)
	}
	if en.Beatmap != de.Beatmap {
		t.Error("locale copies should share the cached beatmap")
	}
}

func TestGet_FetchTimeoutIsTransient(t *testing.T) {
	client := newStubClient(9)
	client.gate = make(chan struct{})
	defer close(client.gate)

	cfg := DefaultConfig()
	cfg.FetchTimeout = 10 * time.Millisecond
	c := New(client, allMods(), cfg, zerolog.Nop())

	_, err := c.Get(context.Background(), 9, mods.None, "")
	if !errors.Is(err, apperr.ErrTransient) {
		t.Fatalf("error = %v, want Transient", err)
	}
	if c.Len() != 0 {
		t.Errorf("timed out computation was cached")
	}
}

func TestGet_RateLimitedFetchIsTransient(t *testing.T) {
	client := newStubClient(1, 2)
	rcfg := gamedata.DefaultResilientConfig()
	rcfg.Name = "test-meta-ratelimit"
	rcfg.RateLimit = 0.001
	rcfg.RateBurst = 1
	limited := gamedata.NewResilient(client, rcfg)

	cfg := DefaultConfig()
	cfg.FetchTimeout = 50 * time.Millisecond
	c := New(limited, allMods(), cfg, zerolog.Nop())

	if _, err := c.Get(context.Background(), 1, mods.None, ""); err != nil {
		t.Fatalf("first Get() should use the burst token: %v", err)
	}

	_, err := c.Get(context.Background(), 2, mods.None, "")
	if !errors.Is(err, apperr.ErrTransient) {
		t.Fatalf("error = %v, want Transient", err)
	}
	if errors.Is(err, apperr.ErrCancelled) {
		t.Error("a live caller must not see Cancelled")
	}
	if !apperr.IsSoft(err) {
		t.Error("rate limited fetch should be a soft miss")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (transient failures are not cached)", c.Len())
	}
	if client.calls.Load() != 1 {
		t.Errorf("client calls = %d, want 1", client.calls.Load())
	}
}

func TestGet_CollaboratorCancellationIsTransient(t *testing.T) {
	client := newStubClient(4)
	est := EstimatorFunc(func(context.Context, *models.Beatmap, mods.Set) (models.EstimateValues, error) {
		return models.EstimateValues{}, context.Canceled
	})
	c := newTestCache(t, client, est)

	_, err := c.Get(context.Background(), 4, mods.None, "")
	if !errors.Is(err, apperr.ErrTransient) {
		t.Fatalf("error = %v, want Transient", err)
	}
	if errors.Is(err, apperr.ErrCancelled) {
		t.Error("a live caller must not see Cancelled")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestGet_AlreadyCancelled(t *testing.T) {
	client := newStubClient(1)
	c := newTestCache(t, client, allMods())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Get(ctx, 1, mods.None, ""); !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("error = %v, want Cancelled", err)
	}
	if client.calls.Load() != 0 {
		t.Error("no fetch expected after cancellation")
	}
}

func TestInvalidate(t *testing.T) {
	client := newStubClient(6)
	c := newTestCache(t, client, allMods())
	ctx := context.Background()

	for _, set := range []mods.Set{mods.None, mods.Hidden, mods.DoubleTime} {
		if _, err := c.Get(ctx, 6, set, ""); err != nil {
			t.Fatal(err)
		}
	}
	if got := c.Invalidate(6); got != 3 {
		t.Errorf("Invalidate() = %d, want 3", got)
	}
	if _, err := c.Get(ctx, 6, mods.None, ""); err != nil {
		t.Fatal(err)
	}
	if got := client.calls.Load(); got != 4 {
		t.Errorf("external fetches = %d, want 4", got)
	}
}

func TestWarm(t *testing.T) {
	client := newStubClient(1, 2, 3)
	c := newTestCache(t, client, allMods())

	err := c.Warm(context.Background(), []models.BeatmapID{1, 2, 3, 999}, mods.Hidden)
	if err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4 (three entries plus one negative)", c.Len())
	}
}

func TestWarm_Cancelled(t *testing.T) {
	c := newTestCache(t, newStubClient(1), allMods())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Warm(ctx, []models.BeatmapID{1}, mods.None)
	if !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("Warm() error = %v, want Cancelled", err)
	}
}

func TestCleanupExpired(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NegativeTTL = time.Millisecond
	c := New(newStubClient(1), allMods(), cfg, zerolog.Nop())
	ctx := context.Background()

	if _, err := c.Get(ctx, 1, mods.None, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, 404, mods.None, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)
	if got := c.CleanupExpired(); got != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestKey_String(t *testing.T) {
	k := Key{BeatmapID: 77, Mods: mods.HardRock | mods.DoubleTime}
	if got := k.String(); got != "77+"+k.Mods.String() {
		t.Errorf("String() = %q", got)
	}
}
