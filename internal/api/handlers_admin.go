// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/models"
	"github.com/tomtom215/dishatlas/internal/narrative"
	"github.com/tomtom215/dishatlas/internal/store"
)

// ListHistories returns a summary of every persisted history.
func (h *Handler) ListHistories(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "History store is not available", nil)
		return
	}

	histories, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to list histories", err)
		return
	}
	if histories == nil {
		histories = []models.HistorySummary{}
	}

	w.Header().Set("Cache-Control", cacheNoStore)
	respondSuccess(w, r, histories, start)
}

// DeleteHistory forgets one dish so that the next lookup regenerates it.
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.histories == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "History service is not available", nil)
		return
	}

	dish, err := url.PathUnescape(chi.URLParam(r, "dish"))
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Malformed dish name", nil)
		return
	}

	err = h.histories.Forget(r.Context(), dish)
	switch {
	case errors.Is(err, narrative.ErrDishRequired):
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "A dish name is required", nil)
		return
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "No stored history for this dish", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to delete history", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("dish", sanitizeLogValue(dish)).Msg("Stored history deleted")

	w.Header().Set("Cache-Control", cacheNoStore)
	respondSuccess(w, r, map[string]interface{}{"deleted": models.NormalizeDishName(dish)}, start)
}

// ClearCache empties the in-process history cache. Persisted histories are
// kept.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.histories == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "History service is not available", nil)
		return
	}

	cleared := h.histories.ClearCache()
	logging.Ctx(r.Context()).Info().Int("entries", cleared).Msg("History cache cleared")

	w.Header().Set("Cache-Control", cacheNoStore)
	respondSuccess(w, r, map[string]interface{}{"cleared": cleared}, start)
}
