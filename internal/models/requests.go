// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package models

// HistoryRequest holds GET /api/v1/history parameters.
type HistoryRequest struct {
	Dish string `json:"dish" validate:"required,dishname"`
}

// DiscoverRequest holds GET /api/v1/discover parameters.
type DiscoverRequest struct {
	Count int `json:"count" validate:"min=1,max=50"`
}

// NearbyRequest holds GET /api/v1/discover/nearby parameters.
type NearbyRequest struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lon" validate:"longitude"`
	RadiusKm  float64 `json:"radius_km" validate:"gt=0,lte=20000"`
}

// SuggestRequest holds GET /api/v1/search/suggest parameters.
type SuggestRequest struct {
	Query string `json:"q" validate:"max=80"`
	Limit int    `json:"limit" validate:"min=1,max=50"`
}

// TrendingRequest holds GET /api/v1/trending parameters.
type TrendingRequest struct {
	Limit int `json:"limit" validate:"min=1,max=100"`
	Days  int `json:"days" validate:"min=0,max=365"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginResponse carries an issued admin token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}
