// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/models"
	"github.com/tomtom215/dishatlas/internal/narrative"
)

// History returns the culinary journey of ?dish=: the steps, their map
// clusters, the great-circle route as GeoJSON and the summary statistics.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.histories == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "History service is not available", nil)
		return
	}

	req := models.HistoryRequest{Dish: models.NormalizeDishName(r.URL.Query().Get("dish"))}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	result, err := h.histories.History(r.Context(), req.Dish)
	if err != nil {
		h.respondHistoryError(w, r, req.Dish, err)
		return
	}

	w.Header().Set("Cache-Control", cacheHistories)
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   buildHistoryResponse(result),
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      result.Cached(),
			Source:      result.Origin,
		},
	})
}

func (h *Handler) respondHistoryError(w http.ResponseWriter, r *http.Request, dish string, err error) {
	switch {
	case errors.Is(err, narrative.ErrDishRequired):
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "A dish name is required", nil)
	case errors.Is(err, narrative.ErrNoHistory):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "No history could be found for this dish", nil)
	case errors.Is(err, narrative.ErrLLMUnavailable):
		logging.Ctx(r.Context()).Warn().Err(err).Str("dish", sanitizeLogValue(dish)).Msg("History generator unavailable")
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "The history generator is temporarily unavailable", nil)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load history", err)
	}
}

// buildHistoryResponse renders a narrative result for the globe. Stops has
// one point per cluster, labelled by the step that founded it; Route is
// empty when there are fewer than two coordinates.
func buildHistoryResponse(result *narrative.Result) models.HistoryResponse {
	summary := result.Summary
	history := *result.History
	history.Steps = summary.Steps

	stops := make([]models.Feature, 0, len(summary.Clusters))
	for i, c := range summary.Clusters {
		founder := summary.Steps[c.Representative()]
		stops = append(stops, models.NewPointFeature(c.Position(), map[string]interface{}{
			"cluster": i,
			"step":    c.Representative(),
			"year":    founder.Year,
			"title":   founder.Title,
			"members": len(c.MemberIndices),
		}))
	}

	route := models.NewFeatureCollection()
	if len(summary.Route.Coordinates) >= 2 {
		route = models.NewFeatureCollection(models.NewLineFeature(summary.Route.Coordinates, map[string]interface{}{
			"interpolated": summary.Route.Interpolated,
			"stops":        summary.Stats.Stops,
		}))
	}

	return models.HistoryResponse{
		History:       history,
		Clusters:      summary.Clusters,
		Route:         route,
		Stops:         models.NewFeatureCollection(stops...),
		Stats:         summary.Stats,
		Display:       summary.Display,
		AmbiguousEras: summary.AmbiguousEras,
		Interpolated:  summary.Route.Interpolated,
	}
}
