// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/dishatlas/internal/auth"
	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/metrics"
	"github.com/tomtom215/dishatlas/internal/models"
)

// Login exchanges the admin credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.authenticator == nil {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Authentication is disabled", nil)
		return
	}

	var req models.LoginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Request body must be a JSON object with username and password", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	token, err := h.authenticator.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.AuthAttempts.WithLabelValues("invalid_credentials").Inc()
			logging.Ctx(r.Context()).Warn().Str("username", sanitizeLogValue(req.Username)).Msg("Login failed")
			respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Invalid username or password", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to issue token", err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	logging.Ctx(r.Context()).Info().Str("username", sanitizeLogValue(token.Username)).Msg("Admin logged in")

	w.Header().Set("Cache-Control", cacheNoStore)
	respondSuccess(w, r, models.LoginResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt.Unix(),
		Username:  token.Username,
		Role:      token.Role,
	}, start)
}
