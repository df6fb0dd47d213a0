// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/dishatlas/internal/auth"
	"github.com/tomtom215/dishatlas/internal/authz"
	"github.com/tomtom215/dishatlas/internal/middleware"
	"github.com/tomtom215/dishatlas/internal/models"
)

// Router owns the handler and the middleware that guards it.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware

	// authn and authzn are nil when security.auth_mode is "none", in which
	// case the admin routes are not mounted.
	authn  *auth.Middleware
	authzn *authz.Middleware
}

// NewRouter creates a Router. Pass a nil jwtManager to disable the admin API;
// enforcer must be non-nil whenever jwtManager is.
func NewRouter(handler *Handler, jwtManager *auth.JWTManager, enforcer *authz.Enforcer) *Router {
	router := &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddlewareFromSecurity(handler.config.Security),
	}
	if jwtManager != nil && enforcer != nil {
		router.authn = auth.NewMiddleware(jwtManager, writeAuthError)
		router.authzn = authz.NewMiddleware(enforcer, writeAuthError)
	}
	return router
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, in order. CORS is global so OPTIONS preflight works
	// on every route.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, models.ErrCodeBadRequest, "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitHistory())
			r.Get("/history", router.handler.History)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/discover", router.handler.Discover)
			r.Get("/discover/nearby", router.handler.DiscoverNearby)
			r.Get("/search/suggest", router.handler.Suggest)
			r.Get("/trending", router.handler.Trending)
		})

		r.With(router.chiMiddleware.RateLimitLogin()).Post("/auth/login", router.handler.Login)

		r.With(router.chiMiddleware.RateLimitWebSocket()).Get("/ws", router.handler.WebSocket)

		if router.authn != nil {
			router.registerAdminRoutes(r)
		}
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// registerAdminRoutes mounts routes that require an admin token.
func (router *Router) registerAdminRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.authn.Authenticate)
		r.Use(router.authzn.Authorize)

		r.Get("/histories", router.handler.ListHistories)
		r.Delete("/histories/{dish}", router.handler.DeleteHistory)
		r.Post("/cache/clear", router.handler.ClearCache)
	})
}
