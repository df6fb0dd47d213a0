// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/dishatlas/internal/auth"
	"github.com/tomtom215/dishatlas/internal/config"
	"github.com/tomtom215/dishatlas/internal/discovery"
	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/metrics"
	"github.com/tomtom215/dishatlas/internal/models"
	"github.com/tomtom215/dishatlas/internal/narrative"
	ws "github.com/tomtom215/dishatlas/internal/websocket"
)

// HistoryService resolves and manages dish histories. *narrative.Service
// implements it.
type HistoryService interface {
	History(ctx context.Context, dish string) (*narrative.Result, error)
	Forget(ctx context.Context, dish string) error
	ClearCache() int
	Available() bool
}

// HistoryLister lists persisted histories. *store.NarrativeStore implements it.
type HistoryLister interface {
	List(ctx context.Context) ([]models.HistorySummary, error)
	Ping() error
}

// SearchAnalytics answers trending queries. *analytics.Recorder implements it.
type SearchAnalytics interface {
	TopDishes(ctx context.Context, limit int, window time.Duration) ([]models.TrendingDish, error)
	Summary(ctx context.Context) (models.SearchSummary, error)
	Ping(ctx context.Context) error
}

// Dependencies wires a Handler. Store, Analytics, Authenticator and Hub are
// optional; the routes that need them answer 503 when they are missing.
type Dependencies struct {
	Histories     HistoryService
	Store         HistoryLister
	Analytics     SearchAnalytics
	Catalogue     *discovery.Catalogue
	Authenticator *auth.Authenticator
	Hub           *ws.Hub
	Config        *config.Config
	Version       string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, websocket upgrade
//   - handlers_helpers.go: response and parameter helpers
//   - handlers_history.go: dish history lookup
//   - handlers_discover.go: featured, nearby, suggestions and trending
//   - handlers_auth.go: admin login
//   - handlers_admin.go: stored history and cache management
//   - handlers_health.go: health probes
type Handler struct {
	histories     HistoryService
	store         HistoryLister
	analytics     SearchAnalytics
	catalogue     *discovery.Catalogue
	authenticator *auth.Authenticator
	wsHub         *ws.Hub
	config        *config.Config
	version       string
	startTime     time.Time
}

// NewHandler creates a Handler. A nil Config gets the built-in defaults and a
// nil Catalogue gets the default featured dishes.
func NewHandler(deps Dependencies) *Handler {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	catalogue := deps.Catalogue
	if catalogue == nil {
		catalogue = discovery.NewDefault(nil)
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return &Handler{
		histories:     deps.Histories,
		store:         deps.Store,
		analytics:     deps.Analytics,
		catalogue:     catalogue,
		authenticator: deps.Authenticator,
		wsHub:         deps.Hub,
		config:        cfg,
		version:       version,
		startTime:     time.Now(),
	}
}

// WebSocket upgrades the connection and registers the client with the hub.
// Clients receive a history_generated message whenever a new history is
// generated anywhere in the deployment.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "Realtime updates are not available", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register(client)
	client.Start()

	logging.Ctx(r.Context()).Debug().Uint64("client_id", client.ID()).Msg("WebSocket client connected")
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts only origins listed in security.cors_origins.
// Browsers always send Origin on websocket handshakes, so a missing header is
// rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
