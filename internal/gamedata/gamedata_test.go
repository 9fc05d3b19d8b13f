// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package gamedata

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/models"
)

// fakeClient is an in-memory Client with call counting and injectable failures.
type fakeClient struct {
	mu       sync.Mutex
	beatmaps map[models.BeatmapID]*models.Beatmap
	users    map[models.UserID]*models.User
	failWith error
	calls    atomic.Int32
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		beatmaps: map[models.BeatmapID]*models.Beatmap{
			77: {ID: 77, Title: "Freedom Dive", StarDifficulty: 7.1},
		},
		users: map[models.UserID]*models.User{
			2: {ID: 2, Name: "peppy", PP: 1234},
		},
	}
}

func (f *fakeClient) Beatmap(_ context.Context, id models.BeatmapID) (*models.Beatmap, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	bm, ok := f.beatmaps[id]
	if !ok {
		return nil, apperr.NotFound("fake.beatmap", "beatmap %d", id)
	}
	return bm, nil
}

func (f *fakeClient) User(_ context.Context, id models.UserID) (*models.User, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("fake.user", "user %d", id)
	}
	cp := *u
	return &cp, nil
}

func testResilientConfig(name string) ResilientConfig {
	return ResilientConfig{
		Name:                name,
		BreakerMaxRequests:  1,
		BreakerInterval:     time.Minute,
		BreakerTimeout:      time.Minute,
		BreakerMinRequests:  3,
		BreakerFailureRatio: 0.5,
	}
}

func TestResilient_PassesThrough(t *testing.T) {
	inner := newFakeClient()
	r := NewResilient(inner, testResilientConfig("test-pass"))

	bm, err := r.Beatmap(context.Background(), 77)
	if err != nil {
		t.Fatalf("Beatmap() error = %v", err)
	}
	if bm.Title != "Freedom Dive" {
		t.Errorf("Title = %q", bm.Title)
	}

	u, err := r.User(context.Background(), 2)
	if err != nil || u.Name != "peppy" {
		t.Errorf("User() = %+v, %v", u, err)
	}
}

func TestResilient_NotFoundDoesNotTrip(t *testing.T) {
	inner := newFakeClient()
	r := NewResilient(inner, testResilientConfig("test-notfound"))

	for i := 0; i < 5; i++ {
		_, err := r.Beatmap(context.Background(), 999)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("call %d: error = %v, want NotFound", i, err)
		}
	}
	if r.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", r.State())
	}
	if got := inner.calls.Load(); got != 5 {
		t.Errorf("inner calls = %d, want 5", got)
	}
}

func TestResilient_TripsOnFailures(t *testing.T) {
	inner := newFakeClient()
	inner.failWith = io.ErrUnexpectedEOF
	r := NewResilient(inner, testResilientConfig("test-trip"))

	for i := 0; i < 3; i++ {
		_, err := r.Beatmap(context.Background(), 77)
		if !errors.Is(err, apperr.ErrTransient) {
			t.Fatalf("call %d: error = %v, want Transient", i, err)
		}
	}
	if r.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", r.State())
	}

	_, err := r.Beatmap(context.Background(), 77)
	if !errors.Is(err, apperr.ErrTransient) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker error = %v", err)
	}
	if got := inner.calls.Load(); got != 3 {
		t.Errorf("inner calls = %d, want 3 (fail fast while open)", got)
	}
}

func TestResilient_CancelledBeforeCall(t *testing.T) {
	inner := newFakeClient()
	r := NewResilient(inner, testResilientConfig("test-cancel"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Beatmap(ctx, 77)
	if !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("error = %v, want Cancelled", err)
	}
	if inner.calls.Load() != 0 {
		t.Error("inner client must not be called after cancellation")
	}
}

func TestResilient_RateLimitHonorsDeadline(t *testing.T) {
	inner := newFakeClient()
	cfg := testResilientConfig("test-ratelimit")
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	r := NewResilient(inner, cfg)

	if _, err := r.Beatmap(context.Background(), 77); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Beatmap(ctx, 77)
	if !errors.Is(err, apperr.ErrTransient) {
		t.Errorf("error = %v, want Transient", err)
	}
	if errors.Is(err, apperr.ErrCancelled) {
		t.Error("a live context must not be reported as cancelled")
	}
	if time.Since(start) > time.Second {
		t.Error("limiter wait should give up at the deadline")
	}
	if inner.calls.Load() != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls.Load())
	}
}

func TestResilient_RateLimitWaitCancelled(t *testing.T) {
	inner := newFakeClient()
	cfg := testResilientConfig("test-ratelimit-cancel")
	cfg.RateLimit = 0.5
	cfg.RateBurst = 1
	r := NewResilient(inner, cfg)

	if _, err := r.Beatmap(context.Background(), 77); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	defer cancel()

	_, err := r.Beatmap(ctx, 77)
	if !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("error = %v, want Cancelled", err)
	}
}

func TestProfiles_MaxAge(t *testing.T) {
	inner := newFakeClient()
	p := NewProfiles(inner, 10)
	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	u, err := p.User(ctx, 2, time.Minute)
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}
	if !u.FetchedAt.Equal(now) {
		t.Errorf("FetchedAt = %v", u.FetchedAt)
	}

	// Fresh enough: served from cache
	now = now.Add(30 * time.Second)
	if _, err := p.User(ctx, 2, time.Minute); err != nil {
		t.Fatal(err)
	}
	if inner.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", inner.calls.Load())
	}

	// Too old: refetched
	now = now.Add(2 * time.Minute)
	if _, err := p.User(ctx, 2, time.Minute); err != nil {
		t.Fatal(err)
	}
	if inner.calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", inner.calls.Load())
	}

	// maxAge <= 0 accepts any cached copy
	now = now.Add(24 * time.Hour)
	if _, err := p.User(ctx, 2, 0); err != nil {
		t.Fatal(err)
	}
	if inner.calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", inner.calls.Load())
	}
}

func TestProfiles_NotFound(t *testing.T) {
	p := NewProfiles(newFakeClient(), 10)

	_, err := p.User(context.Background(), 404, 0)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want NotFound", err)
	}
}

func TestProfiles_Forget(t *testing.T) {
	inner := newFakeClient()
	p := NewProfiles(inner, 10)
	ctx := context.Background()

	if _, err := p.User(ctx, 2, 0); err != nil {
		t.Fatal(err)
	}
	p.Forget(2)
	if _, err := p.User(ctx, 2, 0); err != nil {
		t.Fatal(err)
	}
	if inner.calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 after Forget", inner.calls.Load())
	}
}
