// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(context.Background(), "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func intPtr(v int) *int { return &v }

func TestRecorder_TopDishes(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []SearchRecord{
		{Dish: "pizza", Source: "llm", Stops: 3, DistanceKm: 7000, SpanYears: intPtr(130), SearchedAt: base},
		{Dish: "Pizza", Source: "cache", Stops: 3, DistanceKm: 7000, SpanYears: intPtr(130), SearchedAt: base.Add(time.Minute)},
		{Dish: "PIZZA", Source: "cache", Stops: 3, DistanceKm: 7000, SpanYears: intPtr(130), SearchedAt: base.Add(2 * time.Minute)},
		{Dish: "ramen", Source: "llm", Stops: 2, DistanceKm: 9000, SearchedAt: base.Add(3 * time.Minute)},
		{Dish: "ramen", Source: "store", Stops: 2, DistanceKm: 9000, SearchedAt: base.Add(4 * time.Minute)},
		{Dish: "sushi", Source: "static", Stops: 1, DistanceKm: 0, SearchedAt: base.Add(5 * time.Minute)},
	}
	for _, rec := range records {
		if err := r.RecordSearch(ctx, rec); err != nil {
			t.Fatalf("RecordSearch(%s) error = %v", rec.Dish, err)
		}
	}

	top, err := r.TopDishes(ctx, 2, 0)
	if err != nil {
		t.Fatalf("TopDishes() error = %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("TopDishes() returned %d rows, want 2", len(top))
	}
	if top[0].Dish != "PIZZA" || top[0].Searches != 3 {
		t.Errorf("top[0] = %+v, want PIZZA x3", top[0])
	}
	if top[1].Dish != "ramen" || top[1].Searches != 2 {
		t.Errorf("top[1] = %+v, want ramen x2", top[1])
	}
	if !top[0].LastSearched.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("top[0].LastSearched = %v, want %v", top[0].LastSearched, base.Add(2*time.Minute))
	}
}

func TestRecorder_TopDishesWindow(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	ctx := context.Background()
	now := time.Now()

	_ = r.RecordSearch(ctx, SearchRecord{Dish: "paella", Source: "llm", SearchedAt: now.Add(-48 * time.Hour)})
	_ = r.RecordSearch(ctx, SearchRecord{Dish: "paella", Source: "llm", SearchedAt: now.Add(-47 * time.Hour)})
	_ = r.RecordSearch(ctx, SearchRecord{Dish: "tacos", Source: "llm", SearchedAt: now.Add(-time.Hour)})

	top, err := r.TopDishes(ctx, 10, 24*time.Hour)
	if err != nil {
		t.Fatalf("TopDishes() error = %v", err)
	}
	if len(top) != 1 || top[0].Dish != "tacos" {
		t.Errorf("TopDishes(24h) = %+v, want only tacos", top)
	}
}

func TestRecorder_Summary(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	ctx := context.Background()

	empty, err := r.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() on empty log error = %v", err)
	}
	if empty.TotalSearches != 0 || empty.AvgStops != 0 {
		t.Errorf("Summary() on empty log = %+v, want zeros", empty)
	}

	_ = r.RecordSearch(ctx, SearchRecord{Dish: "croissant", Source: "static", Stops: 2, DistanceKm: 1000})
	_ = r.RecordSearch(ctx, SearchRecord{Dish: "Croissant", Source: "cache", Stops: 4, DistanceKm: 3000})
	_ = r.RecordSearch(ctx, SearchRecord{Dish: "tacos", Source: "llm", Stops: 3, DistanceKm: 2000})

	s, err := r.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if s.TotalSearches != 3 || s.DistinctDishes != 2 {
		t.Errorf("Summary() totals = %d/%d, want 3/2", s.TotalSearches, s.DistinctDishes)
	}
	if s.AvgDistanceKm != 2000 || s.AvgStops != 3 {
		t.Errorf("Summary() averages = %v/%v, want 2000/3", s.AvgDistanceKm, s.AvgStops)
	}
}

func TestRecorder_RejectsBlankDish(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	if err := r.RecordSearch(context.Background(), SearchRecord{Dish: "  "}); err == nil {
		t.Error("RecordSearch() with blank dish should fail")
	}
	if err := r.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestOpen_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "searches.duckdb")
	ctx := context.Background()

	r, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = r.RecordSearch(ctx, SearchRecord{Dish: "ramen", Source: "llm"})
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	s, err := reopened.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if s.TotalSearches != 1 {
		t.Errorf("TotalSearches after reopen = %d, want 1", s.TotalSearches)
	}
}
