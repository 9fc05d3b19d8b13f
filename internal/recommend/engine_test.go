// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package recommend

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/models"
	"github.com/tomtom215/beatmaprec/internal/mods"
	"github.com/tomtom215/beatmaprec/internal/store"
)

// mapResolver resolves handles from a map, or fails with err.
type mapResolver struct {
	handles map[string]models.UserID
	err     error
}

func (m mapResolver) ResolveHandle(_ context.Context, handle string) (models.UserID, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	id, ok := m.handles[handle]
	return id, ok, nil
}

func newTestEngine(t *testing.T, resolver IdentityResolver, ids ...models.BeatmapID) (*Engine, *fakeMeta) {
	t.Helper()
	l, _ := newTestLedger(t)
	meta := newFakeMeta()
	e, err := NewEngine(Deps{
		Metadata:    meta,
		Ledger:      l,
		Populations: equalPopulation(ids...),
		Resolver:    resolver,
	}, &Config{MaxAttempts: 4, Seed: 3}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e, meta
}

func TestNewEngine_RequiresDeps(t *testing.T) {
	if _, err := NewEngine(Deps{}, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for missing collaborators")
	}
}

func TestEngine_AcceptExcludesUntilForget(t *testing.T) {
	e, _ := newTestEngine(t, nil, 1, 2)
	ctx := context.Background()
	const user models.UserID = 9

	for i := 0; i < 2; i++ {
		rec, err := e.Recommend(ctx, Request{UserID: user, Model: ModelGamma})
		if err != nil {
			t.Fatalf("Recommend() #%d error = %v", i, err)
		}
		given, err := e.Accept(ctx, user, rec)
		if err != nil {
			t.Fatalf("Accept() error = %v", err)
		}
		if given.BeatmapID != rec.BeatmapID || given.UserID != user {
			t.Errorf("Accept() = %+v", given)
		}
	}

	if _, err := e.Recommend(ctx, Request{UserID: user, Model: ModelGamma}); !errors.Is(err, apperr.ErrNoCandidates) {
		t.Fatalf("error = %v, want NoCandidates once every beatmap was given", err)
	}

	n, err := e.Forget(ctx, user)
	if err != nil || n != 2 {
		t.Fatalf("Forget() = %d, %v; want 2", n, err)
	}
	if _, err := e.Recommend(ctx, Request{UserID: user, Model: ModelGamma}); err != nil {
		t.Errorf("Recommend() after Forget error = %v", err)
	}
}

func TestEngine_Load(t *testing.T) {
	e, meta := newTestEngine(t, nil, 1)
	ctx := context.Background()

	rec, err := e.Recommend(ctx, Request{UserID: 1, Model: ModelGamma, Mods: mods.Hidden})
	if err != nil {
		t.Fatal(err)
	}
	probesAfterSample := meta.probeCount()

	m, err := e.Load(ctx, rec, "de")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Beatmap.ID != 1 || m.Locale != "de" || m.Estimates.Requested != mods.Hidden {
		t.Errorf("Load() = %+v", m)
	}
	if meta.probeCount() != probesAfterSample+1 {
		t.Error("Load() should resolve metadata once")
	}

	if _, err := e.Load(ctx, nil, ""); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Errorf("Load(nil) error = %v, want InvalidRequest", err)
	}
	if _, err := e.Accept(ctx, 1, nil); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Errorf("Accept(nil) error = %v, want InvalidRequest", err)
	}
}

func TestEngine_RecommendForHandle(t *testing.T) {
	resolver := mapResolver{handles: map[string]models.UserID{"Tillerino": 2070907}}
	e, _ := newTestEngine(t, resolver, 1)
	ctx := context.Background()

	rec, err := e.RecommendForHandle(ctx, "Tillerino", Request{Model: ModelGamma})
	if err != nil || rec.BeatmapID != 1 {
		t.Errorf("RecommendForHandle() = %+v, %v", rec, err)
	}

	_, err = e.RecommendForHandle(ctx, "stranger", Request{Model: ModelGamma})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unresolved handle error = %v, want NotFound", err)
	}
}

func TestEngine_ResolveHandle(t *testing.T) {
	ctx := context.Background()

	noResolver, _ := newTestEngine(t, nil, 1)
	if _, err := noResolver.ResolveHandle(ctx, "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("no resolver error = %v, want NotFound", err)
	}

	broken, _ := newTestEngine(t, mapResolver{err: io.ErrUnexpectedEOF}, 1)
	if _, err := broken.ResolveHandle(ctx, "x"); !errors.Is(err, apperr.ErrTransient) {
		t.Errorf("resolver failure error = %v, want Transient", err)
	}
}

func TestEngine_StoreAsResolver(t *testing.T) {
	db, err := store.Open(store.Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := db.LinkHandle(ctx, "Cookiezi", 124493); err != nil {
		t.Fatal(err)
	}

	e, _ := newTestEngine(t, db, 1)
	user, err := e.ResolveHandle(ctx, "cookiezi")
	if err != nil || user != 124493 {
		t.Errorf("ResolveHandle() = %d, %v", user, err)
	}
}
