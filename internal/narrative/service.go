// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/dishatlas/internal/cache"
	"github.com/tomtom215/dishatlas/internal/journey"
	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/metrics"
	"github.com/tomtom215/dishatlas/internal/models"
	"github.com/tomtom215/dishatlas/internal/store"
)

var (
	// ErrDishRequired is returned for an empty or whitespace-only dish name.
	ErrDishRequired = errors.New("dish name is required")

	// ErrNoHistory means the model answered but produced nothing usable and
	// there is no curated history to fall back to.
	ErrNoHistory = errors.New("no history available for dish")

	// ErrLLMUnavailable means no model could be reached (or none is configured)
	// and there is no curated history to fall back to.
	ErrLLMUnavailable = errors.New("history generator unavailable")
)

// HistoryStore is the persistence the service needs.
type HistoryStore interface {
	Get(ctx context.Context, dish string) (*models.History, error)
	Put(ctx context.Context, h *models.History) error
	Delete(ctx context.Context, dish string) error
}

// Publisher announces lookups and newly generated histories.
type Publisher interface {
	PublishGenerated(ctx context.Context, h *models.History, summary journey.Summary) error
	PublishSearched(ctx context.Context, h *models.History, summary journey.Summary, origin string) error
}

// Options wires a Service. Client may be nil, in which case only the curated
// catalogue is served. Store and Publisher are optional.
type Options struct {
	Client        Completer
	PrimaryModel  string
	FallbackModel string
	Cache         *cache.LFU[*models.History]
	Store         HistoryStore
	Publisher     Publisher
}

// Result is a history together with everything derived from it.
type Result struct {
	History *models.History
	Summary journey.Summary

	// Origin is where the history came from: cache, store, llm or fallback.
	Origin string
}

// Cached reports whether the history was served without generating it.
func (r *Result) Cached() bool {
	return r.Origin == metrics.SourceCache || r.Origin == metrics.SourceStore
}

// Service resolves dish histories through cache, store, model and catalogue.
type Service struct {
	client        Completer
	primaryModel  string
	fallbackModel string
	cache         *cache.LFU[*models.History]
	store         HistoryStore
	publisher     Publisher
	now           func() time.Time
}

// NewService creates a Service. A nil Cache gets a small default one.
func NewService(opts Options) *Service {
	c := opts.Cache
	if c == nil {
		c = cache.NewLFU[*models.History]("histories", 0, 0)
	}
	return &Service{
		client:        opts.Client,
		primaryModel:  opts.PrimaryModel,
		fallbackModel: opts.FallbackModel,
		cache:         c,
		store:         opts.Store,
		publisher:     opts.Publisher,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// History returns the history of dish, generating and persisting it on first
// request.
func (s *Service) History(ctx context.Context, dish string) (*Result, error) {
	name := models.NormalizeDishName(dish)
	if name == "" {
		return nil, ErrDishRequired
	}
	key := models.DishKey(name)
	log := logging.Ctx(ctx).With().Str("dish", key).Logger()

	if h, ok := s.cache.Get(key); ok {
		return s.finish(ctx, h, metrics.SourceCache), nil
	}

	if s.store != nil {
		h, err := s.store.Get(ctx, key)
		switch {
		case err == nil:
			s.cache.Set(key, h)
			return s.finish(ctx, h, metrics.SourceStore), nil
		case !errors.Is(err, store.ErrNotFound):
			log.Warn().Err(err).Msg("History store lookup failed, regenerating")
		}
	}

	h, genErr := s.generate(ctx, name)
	if genErr == nil {
		s.cache.Set(key, h)
		if s.store != nil {
			if err := s.store.Put(ctx, h); err != nil {
				log.Error().Err(err).Msg("Failed to persist generated history")
			}
		}
		result := s.finish(ctx, h, metrics.SourceLLM)
		if s.publisher != nil {
			if err := s.publisher.PublishGenerated(ctx, h, result.Summary); err != nil {
				log.Warn().Err(err).Msg("Failed to publish history.generated event")
			}
		}
		return result, nil
	}

	if h, ok := StaticHistory(name); ok {
		log.Info().AnErr("cause", genErr).Msg("Serving curated history")
		// Not persisted, so a later request can still get a generated one.
		s.cache.Set(key, h)
		return s.finish(ctx, h, metrics.SourceFallback), nil
	}

	if errors.Is(genErr, ErrUnusableCompletion) {
		return nil, fmt.Errorf("%w: %q: %v", ErrNoHistory, name, genErr)
	}
	return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, genErr)
}

// generate asks the primary model, then the fallback model once.
func (s *Service) generate(ctx context.Context, name string) (*models.History, error) {
	if s.client == nil || s.primaryModel == "" {
		return nil, errors.New("no model configured")
	}

	candidates := []string{s.primaryModel}
	if s.fallbackModel != "" && s.fallbackModel != s.primaryModel {
		candidates = append(candidates, s.fallbackModel)
	}

	var lastErr error
	for _, model := range candidates {
		h, err := s.generateWith(ctx, model, name)
		if err == nil {
			return h, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.Ctx(ctx).Warn().Err(err).Str("model", model).Msg("History generation failed")
		lastErr = err
	}
	return nil, lastErr
}

func (s *Service) generateWith(ctx context.Context, model, name string) (*models.History, error) {
	raw, err := s.client.Complete(ctx, model, BuildPrompt(name))
	if err != nil {
		return nil, err
	}
	draft, err := ParseHistory(raw)
	if err != nil {
		return nil, err
	}
	if draft.Dropped > 0 {
		logging.Ctx(ctx).Debug().Int("dropped", draft.Dropped).Str("model", model).Msg("Dropped incomplete steps")
	}

	return &models.History{
		ID:          uuid.NewString(),
		Dish:        name,
		Summary:     draft.Summary,
		Steps:       draft.Steps,
		Source:      models.SourceLLM,
		Model:       model,
		GeneratedAt: s.now(),
	}, nil
}

func (s *Service) finish(ctx context.Context, h *models.History, origin string) *Result {
	summary := journey.Derive(h.Steps)
	metrics.RecordHistory(origin, summary.Stats.Stops)
	if !summary.Route.Interpolated && len(summary.Route.Coordinates) >= 2 {
		metrics.RouteFallbacks.Inc()
	}

	result := &Result{History: h, Summary: summary, Origin: origin}
	if s.publisher != nil {
		if err := s.publisher.PublishSearched(ctx, h, summary, origin); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to publish history.searched event")
		}
	}
	return result
}

// Forget drops dish from the cache and the store.
func (s *Service) Forget(ctx context.Context, dish string) error {
	key := models.DishKey(dish)
	if key == "" {
		return ErrDishRequired
	}
	s.cache.Delete(key)
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, key)
}

// ClearCache empties the in-process cache and returns how many entries it held.
func (s *Service) ClearCache() int {
	return s.cache.Clear()
}

// CacheStats exposes the in-process cache counters.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// CleanupExpired evicts expired cache entries.
func (s *Service) CleanupExpired() int {
	return s.cache.CleanupExpired()
}

// Available reports whether the primary model can currently be asked.
// It is true when no model is configured, since the catalogue still answers.
func (s *Service) Available() bool {
	type availability interface{ Available(model string) bool }
	if a, ok := s.client.(availability); ok && s.primaryModel != "" {
		return a.Available(s.primaryModel)
	}
	return true
}
