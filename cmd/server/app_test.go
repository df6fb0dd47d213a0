// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/dishatlas/internal/analytics"
	"github.com/tomtom215/dishatlas/internal/config"
	"github.com/tomtom215/dishatlas/internal/discovery"
	"github.com/tomtom215/dishatlas/internal/events"
	"github.com/tomtom215/dishatlas/internal/store"
)

func inMemoryConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Storage.BadgerPath = ""
	cfg.Storage.DuckDBPath = ""
	cfg.Security.RateLimitDisabled = true
	return cfg
}

func TestNewApp_ServesCuratedHistoryAndRecordsSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, inMemoryConfig(), "test")
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.Close()

	done := make(chan error, 1)
	go func() { done <- a.forwarder.Serve(ctx) }()
	select {
	case <-a.forwarder.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("forwarder did not subscribe")
	}

	router := a.router.SetupChi()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?dish=pizza", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /history status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		summary, err := a.analytics.Summary(ctx)
		if err != nil {
			t.Fatalf("Summary() error = %v", err)
		}
		if summary.TotalSearches == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("TotalSearches = %d, want 1", summary.TotalSearches)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("forwarder did not stop")
	}
}

func TestNewApp_AdminDisabledWithoutJWT(t *testing.T) {
	t.Parallel()

	a, err := newApp(context.Background(), inMemoryConfig(), "test")
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.Close()

	rec := httptest.NewRecorder()
	a.router.SetupChi().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/histories", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /admin/histories status = %d, want 404", rec.Code)
	}
}

func TestNewApp_JWTModeRequiresSecret(t *testing.T) {
	t.Parallel()

	cfg := inMemoryConfig()
	cfg.Security.AuthMode = "jwt"
	cfg.Security.JWTSecret = ""

	a, err := newApp(context.Background(), cfg, "test")
	if err == nil {
		a.Close()
		t.Fatal("newApp() error = nil, want missing secret error")
	}
	if a != nil {
		t.Errorf("newApp() app = %v, want nil on error", a)
	}
}

func TestNewApp_UnknownEventsBackend(t *testing.T) {
	t.Parallel()

	cfg := inMemoryConfig()
	cfg.Storage.BadgerPath = t.TempDir()
	cfg.Events.Backend = "carrier-pigeon"

	a, err := newApp(context.Background(), cfg, "test")
	if err == nil {
		a.Close()
		t.Fatal("newApp() error = nil, want unknown backend error")
	}
	if a != nil {
		t.Errorf("newApp() app = %v, want nil on error", a)
	}

	// Badger holds a directory lock, so reopening only works if the failed
	// startup closed the store it had already opened.
	s, err := store.Open(store.Options{Path: cfg.Storage.BadgerPath})
	if err != nil {
		t.Fatalf("store.Open() after failed startup error = %v, want store released", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewApp_HistoryStoreOpenFails(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := inMemoryConfig()
	cfg.Storage.BadgerPath = filepath.Join(blocker, "histories")

	a, err := newApp(context.Background(), cfg, "test")
	if err == nil {
		a.Close()
		t.Fatal("newApp() error = nil, want history store error")
	}
	if a != nil {
		t.Errorf("newApp() app = %v, want nil on error", a)
	}
}

func TestApp_CloseNil(t *testing.T) {
	t.Parallel()

	var a *app
	a.Close()
}

func TestRecordSearch_TeachesAutocomplete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec, err := analytics.Open(ctx, "")
	if err != nil {
		t.Fatalf("analytics.Open() error = %v", err)
	}
	defer rec.Close()

	catalogue := discovery.NewDefault(nil)
	handle := recordSearch(rec, catalogue)

	span := 920
	err = handle(ctx, events.HistorySearched{
		EventID:    "e1",
		Dish:       "Zwetschgenknödel",
		Source:     "llm",
		Origin:     "generated",
		Stops:      3,
		DistanceKm: 700,
		SpanYears:  &span,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}

	found := false
	for _, s := range catalogue.Suggest("zwetsch", 5) {
		if s.Value == "Zwetschgenknödel" {
			found = true
		}
	}
	if !found {
		t.Error("searched dish missing from suggestions")
	}

	summary, err := rec.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.TotalSearches != 1 {
		t.Errorf("TotalSearches = %d, want 1", summary.TotalSearches)
	}
}
