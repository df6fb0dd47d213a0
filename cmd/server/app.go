// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/dishatlas/internal/analytics"
	"github.com/tomtom215/dishatlas/internal/api"
	"github.com/tomtom215/dishatlas/internal/auth"
	"github.com/tomtom215/dishatlas/internal/authz"
	"github.com/tomtom215/dishatlas/internal/cache"
	"github.com/tomtom215/dishatlas/internal/config"
	"github.com/tomtom215/dishatlas/internal/discovery"
	"github.com/tomtom215/dishatlas/internal/events"
	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/models"
	"github.com/tomtom215/dishatlas/internal/narrative"
	"github.com/tomtom215/dishatlas/internal/store"
	"github.com/tomtom215/dishatlas/internal/supervisor"
	"github.com/tomtom215/dishatlas/internal/supervisor/services"
	ws "github.com/tomtom215/dishatlas/internal/websocket"
)

// maintenanceInterval is how often badger GC and cache expiry run.
const maintenanceInterval = 10 * time.Minute

// app holds every long-lived component. Build it with newApp and release it
// with Close once the supervisor tree has stopped.
type app struct {
	cfg *config.Config

	store     *store.NarrativeStore
	analytics *analytics.Recorder
	bus       *events.Bus
	histories *narrative.Service
	catalogue *discovery.Catalogue
	hub       *ws.Hub
	forwarder *events.Forwarder
	router    *api.Router
}

// newApp opens storage and wires the services together. On error everything
// opened so far is closed again.
func newApp(ctx context.Context, cfg *config.Config, version string) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.store, err = store.Open(store.Options{
		Path: cfg.Storage.BadgerPath,
		TTL:  cfg.Storage.HistoryTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	a.analytics, err = analytics.Open(ctx, cfg.Storage.DuckDBPath)
	if err != nil {
		return nil, fmt.Errorf("open search analytics: %w", err)
	}

	a.bus, err = events.NewBus(cfg.Events)
	if err != nil {
		return nil, fmt.Errorf("open event bus: %w", err)
	}

	opts := narrative.Options{
		PrimaryModel:  cfg.LLM.PrimaryModel,
		FallbackModel: cfg.LLM.FallbackModel,
		Cache:         cache.NewLFU[*models.History]("histories", cfg.Cache.Capacity, cfg.Cache.TTL),
		Store:         a.store,
		Publisher:     a.bus,
	}
	if cfg.LLM.Configured() {
		opts.Client = narrative.NewClient(cfg.LLM)
	} else {
		logging.Warn().Msg("No LLM API key configured, serving curated histories only")
	}
	a.histories = narrative.NewService(opts)

	a.catalogue = discovery.NewDefault(nil)
	for _, dish := range narrative.StaticDishes() {
		a.catalogue.AddDish(dish)
	}

	a.hub = ws.NewHub()

	a.forwarder = events.NewForwarder(a.bus)
	a.forwarder.OnGenerated("websocket", a.hub.OnHistoryGenerated)
	a.forwarder.OnSearched("analytics", recordSearch(a.analytics, a.catalogue))

	a.router, err = a.newRouter(version)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// newRouter builds the HTTP routes, mounting the admin API only in jwt mode.
func (a *app) newRouter(version string) (*api.Router, error) {
	deps := api.Dependencies{
		Histories: a.histories,
		Store:     a.store,
		Analytics: a.analytics,
		Catalogue: a.catalogue,
		Hub:       a.hub,
		Config:    a.cfg,
		Version:   version,
	}

	if a.cfg.Security.AuthMode != "jwt" {
		logging.Info().Str("auth_mode", a.cfg.Security.AuthMode).Msg("Admin API disabled")
		return api.NewRouter(api.NewHandler(deps), nil, nil), nil
	}

	jwtManager, err := auth.NewJWTManager(a.cfg.Security)
	if err != nil {
		return nil, fmt.Errorf("create JWT manager: %w", err)
	}
	authenticator, err := auth.NewAuthenticator(a.cfg.Security, jwtManager)
	if err != nil {
		return nil, fmt.Errorf("create authenticator: %w", err)
	}
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	deps.Authenticator = authenticator

	logging.Info().Str("admin", a.cfg.Security.AdminUsername).Msg("Admin API enabled")
	return api.NewRouter(api.NewHandler(deps), jwtManager, enforcer), nil
}

// recordSearch logs every lookup to DuckDB and teaches autocomplete the
// dish name.
func recordSearch(rec *analytics.Recorder, catalogue *discovery.Catalogue) events.SearchedHandler {
	return func(ctx context.Context, ev events.HistorySearched) error {
		catalogue.AddDish(ev.Dish)
		return rec.RecordSearch(ctx, analytics.SearchRecord{
			Dish:       ev.Dish,
			Source:     ev.Origin,
			Stops:      ev.Stops,
			DistanceKm: ev.DistanceKm,
			SpanYears:  ev.SpanYears,
			SearchedAt: ev.Timestamp,
		})
	}
}

// httpServer returns the configured HTTP server.
func (a *app) httpServer() *http.Server {
	return &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.Timeout,
		WriteTimeout:      a.cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
}

// addServices registers the long-running components with the tree.
func (a *app) addServices(tree *supervisor.Tree, server *http.Server) {
	tree.AddDataService(services.NewMaintenanceService(maintenanceInterval,
		logging.WithComponent("maintenance"),
		services.MaintenanceTask{Name: "badger-gc", Run: a.store.RunGC},
		services.MaintenanceTask{Name: "history-cache-expiry", Run: func(context.Context) error {
			if n := a.histories.CleanupExpired(); n > 0 {
				logging.Debug().Int("evicted", n).Msg("Expired cached histories")
			}
			return nil
		}},
	))

	tree.AddMessagingService(services.NewWebSocketHubService(a.hub))
	tree.AddMessagingService(a.forwarder)

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
}

// Close releases the bus and both databases. It is safe on a nil or
// partially built app.
func (a *app) Close() {
	if a == nil {
		return
	}
	var errs []error
	if a.bus != nil {
		errs = append(errs, a.bus.Close())
	}
	if a.analytics != nil {
		errs = append(errs, a.analytics.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logging.Error().Err(err).Msg("Error closing components")
	}
}
