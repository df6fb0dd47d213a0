// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package models

import (
	"strings"
	"time"

	"github.com/tomtom215/dishatlas/internal/journey"
)

// History sources.
const (
	SourceLLM    = "llm"
	SourceStatic = "static"
)

// History is a generated or curated narrative for one dish.
type History struct {
	ID          string         `json:"id"`
	Dish        string         `json:"dish"`
	Summary     string         `json:"summary"`
	Steps       []journey.Step `json:"steps"`
	Source      string         `json:"source"`
	Model       string         `json:"model,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// HistoryResponse is the payload of GET /api/v1/history: the narrative plus
// everything the globe needs to draw it.
type HistoryResponse struct {
	History       History           `json:"history"`
	Clusters      []journey.Cluster `json:"clusters"`
	Route         FeatureCollection `json:"route"`
	Stops         FeatureCollection `json:"stops"`
	Stats         journey.Stats     `json:"stats"`
	Display       journey.Display   `json:"display"`
	AmbiguousEras []string          `json:"ambiguous_eras,omitempty"`
	Interpolated  bool              `json:"interpolated"`
}

// HistorySummary lists a stored history without its steps.
type HistorySummary struct {
	Dish        string    `json:"dish"`
	Source      string    `json:"source"`
	Model       string    `json:"model,omitempty"`
	Steps       int       `json:"steps"`
	GeneratedAt time.Time `json:"generated_at"`
}

// FeaturedDish is one entry of the curated discovery catalogue.
type FeaturedDish struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Era       string  `json:"era"`
	Blurb     string  `json:"blurb"`
}

// TrendingDish is one row of the search analytics leaderboard.
type TrendingDish struct {
	Dish         string    `json:"dish"`
	Searches     int64     `json:"searches"`
	LastSearched time.Time `json:"last_searched"`
}

// SearchSummary aggregates the search log.
type SearchSummary struct {
	TotalSearches  int64   `json:"total_searches"`
	DistinctDishes int64   `json:"distinct_dishes"`
	AvgDistanceKm  float64 `json:"avg_distance_km"`
	AvgStops       float64 `json:"avg_stops"`
}

// NormalizeDishName trims the name and collapses inner whitespace, keeping
// the caller's casing for display.
func NormalizeDishName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// DishKey is the case-insensitive lookup key for a dish name.
func DishKey(name string) string {
	return strings.ToLower(NormalizeDishName(name))
}
