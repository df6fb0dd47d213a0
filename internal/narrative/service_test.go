// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package narrative

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/dishatlas/internal/journey"
	"github.com/tomtom215/dishatlas/internal/metrics"
	"github.com/tomtom215/dishatlas/internal/models"
	"github.com/tomtom215/dishatlas/internal/store"
)

// scriptedCompleter answers per model from a fixed script.
type scriptedCompleter struct {
	mu      sync.Mutex
	answers map[string]string
	errs    map[string]error
	calls   []string
}

func (c *scriptedCompleter) Complete(_ context.Context, model string, _ []Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, model)
	if err, ok := c.errs[model]; ok {
		return "", err
	}
	return c.answers[model], nil
}

func (c *scriptedCompleter) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]*models.History
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]*models.History)}
}

func (m *memoryStore) Get(_ context.Context, dish string) (*models.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.data[models.DishKey(dish)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return h, nil
}

func (m *memoryStore) Put(_ context.Context, h *models.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[models.DishKey(h.Dish)] = h
	return nil
}

func (m *memoryStore) Delete(_ context.Context, dish string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[models.DishKey(dish)]; !ok {
		return store.ErrNotFound
	}
	delete(m.data, models.DishKey(dish))
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	generated []string
	searched  []string
}

func (p *recordingPublisher) PublishGenerated(_ context.Context, h *models.History, _ journey.Summary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generated = append(p.generated, h.Dish)
	return nil
}

func (p *recordingPublisher) PublishSearched(_ context.Context, _ *models.History, _ journey.Summary, origin string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searched = append(p.searched, origin)
	return nil
}

func newTestService(completer Completer, st HistoryStore, pub Publisher) *Service {
	return NewService(Options{
		Client:        completer,
		PrimaryModel:  "primary",
		FallbackModel: "fallback",
		Store:         st,
		Publisher:     pub,
	})
}

func TestService_GeneratesThenCaches(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{answers: map[string]string{"primary": validCompletion}}
	st := newMemoryStore()
	pub := &recordingPublisher{}
	svc := newTestService(completer, st, pub)
	ctx := context.Background()

	first, err := svc.History(ctx, "  Neapolitan   Pizza ")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if first.Origin != metrics.SourceLLM {
		t.Errorf("Origin = %q, want %q", first.Origin, metrics.SourceLLM)
	}
	if first.History.Dish != "Neapolitan Pizza" {
		t.Errorf("Dish = %q, want normalized name", first.History.Dish)
	}
	if first.History.Model != "primary" || first.History.Source != models.SourceLLM {
		t.Errorf("Model/Source = %q/%q", first.History.Model, first.History.Source)
	}
	if first.History.ID == "" {
		t.Error("ID should be set")
	}
	if first.Summary.Stats.Stops != 2 {
		t.Errorf("Stops = %d, want 2", first.Summary.Stats.Stops)
	}
	if _, err := st.Get(ctx, "neapolitan pizza"); err != nil {
		t.Errorf("history not persisted: %v", err)
	}

	second, err := svc.History(ctx, "NEAPOLITAN PIZZA")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if second.Origin != metrics.SourceCache || !second.Cached() {
		t.Errorf("Origin = %q, want cache", second.Origin)
	}
	if second.History.ID != first.History.ID {
		t.Error("cached lookup returned a different history")
	}
	if calls := completer.Calls(); len(calls) != 1 {
		t.Errorf("model calls = %v, want exactly one", calls)
	}
	if len(pub.generated) != 1 || len(pub.searched) != 2 {
		t.Errorf("events generated=%v searched=%v", pub.generated, pub.searched)
	}
}

func TestService_ReadsFromStore(t *testing.T) {
	t.Parallel()

	st := newMemoryStore()
	stored, _ := StaticHistory("ramen")
	stored.Source = models.SourceLLM
	_ = st.Put(context.Background(), stored)

	completer := &scriptedCompleter{}
	svc := newTestService(completer, st, nil)

	res, err := svc.History(context.Background(), "Ramen")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if res.Origin != metrics.SourceStore {
		t.Errorf("Origin = %q, want store", res.Origin)
	}
	if len(completer.Calls()) != 0 {
		t.Error("model should not be called on a store hit")
	}
}

func TestService_FallbackModel(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{
		answers: map[string]string{"primary": "I cannot help with that.", "fallback": validCompletion},
	}
	svc := newTestService(completer, nil, nil)

	res, err := svc.History(context.Background(), "Margherita")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if res.History.Model != "fallback" {
		t.Errorf("Model = %q, want fallback", res.History.Model)
	}
	calls := completer.Calls()
	if len(calls) != 2 || calls[0] != "primary" || calls[1] != "fallback" {
		t.Errorf("calls = %v, want [primary fallback]", calls)
	}
}

func TestService_StaticWhenModelsFail(t *testing.T) {
	t.Parallel()

	boom := errors.New("llm request failed: status 503: overloaded")
	completer := &scriptedCompleter{errs: map[string]error{"primary": boom, "fallback": boom}}
	st := newMemoryStore()
	svc := newTestService(completer, st, nil)

	res, err := svc.History(context.Background(), "Sushi")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if res.Origin != metrics.SourceFallback || res.History.Source != models.SourceStatic {
		t.Errorf("Origin/Source = %q/%q, want fallback/static", res.Origin, res.History.Source)
	}
	if _, err := st.Get(context.Background(), "sushi"); !errors.Is(err, store.ErrNotFound) {
		t.Error("curated histories must not be persisted")
	}
}

func TestService_Errors(t *testing.T) {
	t.Parallel()

	unusable := &scriptedCompleter{answers: map[string]string{"primary": "{}", "fallback": "no"}}
	down := &scriptedCompleter{errs: map[string]error{
		"primary":  errors.New("connection refused"),
		"fallback": errors.New("connection refused"),
	}}

	tests := []struct {
		name      string
		completer Completer
		dish      string
		want      error
	}{
		{"blank dish", unusable, "   ", ErrDishRequired},
		{"unusable output", unusable, "Glorp Stew", ErrNoHistory},
		{"models down", down, "Glorp Stew", ErrLLMUnavailable},
		{"unconfigured", nil, "Glorp Stew", ErrLLMUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(tt.completer, nil, nil)
			_, err := svc.History(context.Background(), tt.dish)
			if !errors.Is(err, tt.want) {
				t.Errorf("History(%q) error = %v, want %v", tt.dish, err, tt.want)
			}
		})
	}
}

func TestService_UnconfiguredServesCatalogue(t *testing.T) {
	t.Parallel()

	svc := NewService(Options{})
	res, err := svc.History(context.Background(), "Paella")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if res.History.Dish != "Paella" || len(res.History.Steps) == 0 {
		t.Errorf("History = %+v", res.History)
	}
	if !svc.Available() {
		t.Error("Available() = false without a model, want true")
	}
}

func TestService_ForgetAndClear(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{answers: map[string]string{"primary": validCompletion}}
	st := newMemoryStore()
	svc := newTestService(completer, st, nil)
	ctx := context.Background()

	if _, err := svc.History(ctx, "Calzone"); err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if err := svc.Forget(ctx, "calzone"); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	if err := svc.Forget(ctx, "calzone"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Forget() error = %v, want ErrNotFound", err)
	}

	if _, err := svc.History(ctx, "Calzone"); err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if n := svc.ClearCache(); n != 1 {
		t.Errorf("ClearCache() = %d, want 1", n)
	}
	if len(completer.Calls()) != 2 {
		t.Errorf("calls = %v, want regeneration after Forget", completer.Calls())
	}
}

func TestStaticCatalogue(t *testing.T) {
	t.Parallel()

	dishes := StaticDishes()
	if len(dishes) != 6 {
		t.Fatalf("StaticDishes() = %v, want 6 entries", dishes)
	}
	for _, dish := range dishes {
		h, ok := StaticHistory(dish)
		if !ok {
			t.Errorf("StaticHistory(%q) missing", dish)
			continue
		}
		if len(h.Steps) < 5 {
			t.Errorf("%s has %d steps, want at least 5", dish, len(h.Steps))
		}
		if summary := journey.Derive(h.Steps); summary.Stats.Stops < 3 {
			t.Errorf("%s has %d stops, want at least 3", dish, summary.Stats.Stops)
		}
	}
	if _, ok := StaticHistory("glorp"); ok {
		t.Error("unknown dish should not be in the catalogue")
	}
}
