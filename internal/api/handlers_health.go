// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/dishatlas/internal/models"
)

// Component states reported by Health.
const (
	componentOK          = "ok"
	componentDown        = "down"
	componentDisabled    = "disabled"
	componentCircuitOpen = "circuit_open"
)

// healthCheckTimeout bounds each dependency ping.
const healthCheckTimeout = 2 * time.Second

// Health reports overall status and the state of each dependency. It always
// answers 200; status is "degraded" when a dependency is down.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	components := h.checkComponents(r.Context())

	status := "healthy"
	for _, state := range components {
		if state == componentDown || state == componentCircuitOpen {
			status = "degraded"
			break
		}
	}

	w.Header().Set("Cache-Control", cacheNoStore)
	respondJSON(w, nil, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:     status,
			Version:    h.version,
			Uptime:     time.Since(h.startTime).Seconds(),
			Components: components,
			Timestamp:  time.Now().UTC(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthLive handles liveness probes. It answers 200 while the process is up,
// regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", cacheNoStore)
	respondJSON(w, nil, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthReady handles readiness probes. It answers 503 when the history store
// is unreachable or the model's circuit breaker is open.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	components := h.checkComponents(r.Context())
	ready := components["store"] != componentDown && components["llm"] != componentCircuitOpen

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	w.Header().Set("Cache-Control", cacheNoStore)
	respondJSON(w, nil, statusCode, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"ready":      ready,
			"status":     status,
			"components": components,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

func (h *Handler) checkComponents(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	components := map[string]string{
		"store":     componentDisabled,
		"analytics": componentDisabled,
		"llm":       componentDisabled,
	}

	if h.store != nil {
		components["store"] = stateOf(h.store.Ping())
	}
	if h.analytics != nil {
		components["analytics"] = stateOf(h.analytics.Ping(ctx))
	}
	if h.histories != nil {
		components["llm"] = componentOK
		if !h.histories.Available() {
			components["llm"] = componentCircuitOpen
		}
	}
	return components
}

func stateOf(err error) string {
	if err != nil {
		return componentDown
	}
	return componentOK
}
