// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/dishatlas/internal/cache"
	"github.com/tomtom215/dishatlas/internal/geo"
	"github.com/tomtom215/dishatlas/internal/models"
)

// defaultTrendingLimit applies when ?limit= is absent.
const defaultTrendingLimit = 10

// TrendingResponse is the body of GET /api/v1/trending.
type TrendingResponse struct {
	Dishes  []models.TrendingDish `json:"dishes"`
	Summary models.SearchSummary  `json:"summary"`
	Days    int                   `json:"days"`
}

// SuggestResponse is the body of GET /api/v1/search/suggest.
type SuggestResponse struct {
	Query       string             `json:"query"`
	Suggestions []cache.Suggestion `json:"suggestions"`
}

// Discover returns ?count= randomly chosen featured dishes as GeoJSON points.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	count, apiErr := getIntParam(r, "count", h.config.Discovery.FeaturedCount)
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	req := models.DiscoverRequest{Count: count}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	dishes := h.catalogue.Featured(req.Count)
	features := make([]models.Feature, 0, len(dishes))
	for _, d := range dishes {
		features = append(features, featuredDishFeature(d, nil))
	}

	w.Header().Set("Cache-Control", cacheNoStore)
	respondSuccess(w, r, models.NewFeatureCollection(features...), start)
}

// DiscoverNearby returns featured dishes within ?radius_km= of ?lat=&lon=,
// closest first.
func (h *Handler) DiscoverNearby(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	lat, hasLat, apiErr := getFloatParam(r, "lat")
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	lon, hasLon, apiErr := getFloatParam(r, "lon")
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if !hasLat || !hasLon {
		respondValidationError(w, paramError("lat and lon", "provided"))
		return
	}
	radius, hasRadius, apiErr := getFloatParam(r, "radius_km")
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if !hasRadius {
		radius = h.config.Discovery.NearbyRadiusKm
	}

	req := models.NearbyRequest{Latitude: lat, Longitude: lon, RadiusKm: radius}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	nearby := h.catalogue.Nearby(req.Latitude, req.Longitude, req.RadiusKm)
	features := make([]models.Feature, 0, len(nearby))
	for _, n := range nearby {
		features = append(features, featuredDishFeature(n.Dish, map[string]interface{}{
			"distance_km": n.DistanceKm,
		}))
	}

	respondSuccess(w, r, models.NewFeatureCollection(features...), start)
}

// Suggest autocompletes dish names from the featured catalogue and every dish
// searched so far.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, apiErr := getIntParam(r, "limit", h.config.Discovery.SuggestionLimit)
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	req := models.SuggestRequest{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit: limit,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	suggestions := []cache.Suggestion{}
	if req.Query != "" {
		suggestions = h.catalogue.Suggest(req.Query, req.Limit)
	}

	respondSuccess(w, r, SuggestResponse{Query: req.Query, Suggestions: suggestions}, start)
}

// Trending reports the most searched dishes over the last ?days= days
// (0, the default, means all time) together with overall search totals.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.analytics == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "Search analytics are not available", nil)
		return
	}

	limit, apiErr := getIntParam(r, "limit", defaultTrendingLimit)
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	days, apiErr := getIntParam(r, "days", 0)
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	req := models.TrendingRequest{Limit: limit, Days: days}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	window := time.Duration(req.Days) * 24 * time.Hour
	dishes, err := h.analytics.TopDishes(r.Context(), req.Limit, window)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load trending dishes", err)
		return
	}
	summary, err := h.analytics.Summary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load search summary", err)
		return
	}

	respondSuccess(w, r, TrendingResponse{Dishes: dishes, Summary: summary, Days: req.Days}, start)
}

func featuredDishFeature(d models.FeaturedDish, extra map[string]interface{}) models.Feature {
	props := map[string]interface{}{
		"name":    d.Name,
		"country": d.Country,
		"era":     d.Era,
		"blurb":   d.Blurb,
	}
	for k, v := range extra {
		props[k] = v
	}
	return models.NewPointFeature(geo.NewPosition(d.Latitude, d.Longitude), props)
}
