// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package cache

import (
	"testing"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/graph"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()

	store, err := New(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t, time.Hour)

	key := DacusKey("abc123", "Julien Baker")
	want := graph.Result{
		Outcome:  graph.OutcomeFound,
		Distance: 2,
		Path:     []string{"Julien Baker", "boygenius", "Lucy Dacus"},
	}
	if err := store.Set(key, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got graph.Result
	hit, err := store.Get(key, &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.Outcome != want.Outcome || got.Distance != want.Distance {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.Path) != 3 || got.Path[0] != "Julien Baker" {
		t.Errorf("path corrupted: %v", got.Path)
	}
}

func TestStoreMissOnUnknownKey(t *testing.T) {
	store := newTestStore(t, time.Hour)

	var out graph.Result
	hit, err := store.Get(DacusKey("abc123", "Mitski"), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected miss for unknown key")
	}
}

func TestStoreKeysIsolateFingerprints(t *testing.T) {
	store := newTestStore(t, time.Hour)

	key := DacusKey("fingerprint-a", "Wednesday")
	if err := store.Set(key, graph.Result{Outcome: graph.OutcomeNotFound}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out graph.Result
	hit, err := store.Get(DacusKey("fingerprint-b", "Wednesday"), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("entry under a different fingerprint must not hit")
	}
}

func TestStoreInvalidateAll(t *testing.T) {
	store := newTestStore(t, time.Hour)

	key := FigureKey("abc123", "Lucy Dacus", 42, 3)
	if err := store.Set(key, graph.Figure{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.InvalidateAll(); err != nil {
		t.Fatalf("InvalidateAll: %v", err)
	}

	var out graph.Figure
	hit, err := store.Get(key, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected miss after InvalidateAll")
	}
}

func TestDisabledStore(t *testing.T) {
	store, err := New("", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store.Enabled() {
		t.Error("empty path must produce a disabled store")
	}

	if err := store.Set("k", graph.Result{}); err != nil {
		t.Errorf("disabled Set must be a no-op, got %v", err)
	}
	var out graph.Result
	hit, err := store.Get("k", &out)
	if err != nil || hit {
		t.Errorf("disabled Get must miss cleanly, hit=%v err=%v", hit, err)
	}
	if err := store.InvalidateAll(); err != nil {
		t.Errorf("disabled InvalidateAll must be a no-op, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("disabled Close must be a no-op, got %v", err)
	}
}

func TestFigureKeyDistinguishesParameters(t *testing.T) {
	base := FigureKey("fp", "Lucy Dacus", 42, 3)
	variants := []string{
		FigureKey("fp2", "Lucy Dacus", 42, 3),
		FigureKey("fp", "Julien Baker", 42, 3),
		FigureKey("fp", "Lucy Dacus", 7, 3),
		FigureKey("fp", "Lucy Dacus", 42, 5),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base key %q", i, base)
		}
	}
}
