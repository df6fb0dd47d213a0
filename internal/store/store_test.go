// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/dishatlas/internal/journey"
	"github.com/tomtom215/dishatlas/internal/models"
)

func newTestStore(t *testing.T) *NarrativeStore {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testHistory(dish string, at time.Time) *models.History {
	return &models.History{
		ID:      "id-" + dish,
		Dish:    dish,
		Summary: "A short history of " + dish,
		Steps: []journey.Step{
			journey.NewLocatedStep("1889", "Margherita", 40.85, 14.27),
			journey.NewGlobalStep("1950s", "Goes global"),
		},
		Source:      models.SourceLLM,
		Model:       "test-model",
		GeneratedAt: at,
	}
}

func TestNarrativeStore_PutGet(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	if err := s.Put(ctx, testHistory("Pizza", at)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, "  PIZZA ")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Dish != "Pizza" || len(got.Steps) != 2 {
		t.Errorf("Get() = %+v, want Pizza with 2 steps", got)
	}
	if got.Steps[0].Latitude == nil || *got.Steps[0].Latitude != 40.85 {
		t.Errorf("Steps[0].Latitude = %v, want 40.85", got.Steps[0].Latitude)
	}
	if got.Steps[1].Latitude != nil {
		t.Errorf("Steps[1].Latitude = %v, want nil", *got.Steps[1].Latitude)
	}
	if !got.GeneratedAt.Equal(at) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, at)
	}
}

func TestNarrativeStore_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "sushi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "sushi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestNarrativeStore_DeleteAndList(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for i, dish := range []string{"Ramen", "Tacos", "Paella"} {
		if err := s.Put(ctx, testHistory(dish, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Put(%s) error = %v", dish, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"Paella", "Tacos", "Ramen"}
	if len(list) != len(want) {
		t.Fatalf("List() returned %d entries, want %d", len(list), len(want))
	}
	for i, w := range want {
		if list[i].Dish != w {
			t.Errorf("List()[%d].Dish = %q, want %q", i, list[i].Dish, w)
		}
		if list[i].Steps != 2 {
			t.Errorf("List()[%d].Steps = %d, want 2", i, list[i].Steps)
		}
	}

	if err := s.Delete(ctx, "tacos"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Count() = %d after delete, want 2", n)
	}
}

func TestNarrativeStore_Overwrite(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	first := testHistory("Croissant", time.Now())
	second := testHistory("croissant", time.Now())
	second.Summary = "updated"

	_ = s.Put(ctx, first)
	_ = s.Put(ctx, second)

	got, err := s.Get(ctx, "Croissant")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Summary != "updated" {
		t.Errorf("Summary = %q, want updated", got.Summary)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestNarrativeStore_Validation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if err := s.Put(context.Background(), &models.History{Dish: "   "}); err == nil {
		t.Error("Put() with blank dish should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Get(ctx, "pizza"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() with canceled context error = %v, want context.Canceled", err)
	}
}

func TestNarrativeStore_PingAndGC(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if err := s.Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := s.RunGC(context.Background()); err != nil {
		t.Errorf("RunGC() on in-memory store error = %v, want nil", err)
	}
}

func TestOpen_OnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(Options{Path: dir, TTL: time.Hour})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Put(context.Background(), testHistory("Sushi", time.Now())); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(Options{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), "sushi"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}
