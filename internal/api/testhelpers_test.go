// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dishatlas/internal/config"
	"github.com/tomtom215/dishatlas/internal/discovery"
	"github.com/tomtom215/dishatlas/internal/journey"
	"github.com/tomtom215/dishatlas/internal/metrics"
	"github.com/tomtom215/dishatlas/internal/models"
	"github.com/tomtom215/dishatlas/internal/narrative"
)

type fakeHistories struct {
	mu        sync.Mutex
	result    *narrative.Result
	err       error
	forgetErr error
	forgotten []string
	cleared   int
	available bool
}

func (f *fakeHistories) History(_ context.Context, _ string) (*narrative.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeHistories) Forget(_ context.Context, dish string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotten = append(f.forgotten, dish)
	return f.forgetErr
}

func (f *fakeHistories) ClearCache() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

func (f *fakeHistories) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

type fakeLister struct {
	summaries []models.HistorySummary
	err       error
	pingErr   error
}

func (f *fakeLister) List(context.Context) ([]models.HistorySummary, error) {
	return f.summaries, f.err
}

func (f *fakeLister) Ping() error { return f.pingErr }

type fakeAnalytics struct {
	mu         sync.Mutex
	dishes     []models.TrendingDish
	summary    models.SearchSummary
	err        error
	pingErr    error
	lastLimit  int
	lastWindow time.Duration
}

func (f *fakeAnalytics) TopDishes(_ context.Context, limit int, window time.Duration) ([]models.TrendingDish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit, f.lastWindow = limit, window
	return f.dishes, f.err
}

func (f *fakeAnalytics) Summary(context.Context) (models.SearchSummary, error) {
	return f.summary, f.err
}

func (f *fakeAnalytics) Ping(context.Context) error { return f.pingErr }

// pizzaResult is the curated pizza history as the service would return it.
func pizzaResult(t *testing.T) *narrative.Result {
	t.Helper()
	h, ok := narrative.StaticHistory("pizza")
	if !ok {
		t.Fatal("curated pizza history missing")
	}
	return &narrative.Result{History: h, Summary: journey.Derive(h.Steps), Origin: metrics.SourceFallback}
}

var testDishes = []models.FeaturedDish{
	{Name: "Pizza", Country: "Italy", Latitude: 40.85, Longitude: 14.27, Era: "18th century"},
	{Name: "Paella", Country: "Spain", Latitude: 39.47, Longitude: -0.38, Era: "18th century"},
	{Name: "Sushi", Country: "Japan", Latitude: 35.68, Longitude: 139.77, Era: "1820s"},
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Discovery.FeaturedCount = 2
	return cfg
}

func newTestHandler(deps Dependencies) *Handler {
	if deps.Config == nil {
		deps.Config = testConfig()
	}
	if deps.Catalogue == nil {
		deps.Catalogue = discovery.New(testDishes, nil)
	}
	deps.Version = "test"
	return NewHandler(deps)
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}
