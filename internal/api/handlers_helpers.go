// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/models"
	"github.com/tomtom215/dishatlas/internal/validation"
)

// Cache-Control policies.
const (
	cacheNoStore   = "no-store"
	cacheRevalid   = "no-cache"
	cacheHistories = "public, max-age=300"
)

// maxRequestBodyBytes bounds JSON request bodies.
const maxRequestBodyBytes = 4 << 10

// sanitizeLogValue removes control characters from strings to prevent log
// injection.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes response with an ETag over its data and answers 304 to a
// GET whose If-None-Match already matches. r may be nil for error responses.
// Callers set Cache-Control before calling; the default is no-cache.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	header := w.Header()
	header.Set("Content-Type", "application/json")
	header.Set("Vary", "Accept-Encoding")
	if header.Get("Cache-Control") == "" {
		header.Set("Cache-Control", cacheRevalid)
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if status == http.StatusOK {
		if payload, err := json.Marshal(response.Data); err == nil {
			etag := generateETag(payload)
			header.Set("ETag", etag)
			if r != nil && r.Method == http.MethodGet && etagMatches(r.Header.Get("If-None-Match"), etag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope stamped with the time since
// start.
func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}, start time.Time) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// generateETag creates a quoted ETag from data using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// respondError sends an error response. err is logged, never returned to the
// client.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}
	respondAPIError(w, status, &models.APIError{Code: code, Message: message})
}

func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	w.Header().Set("Cache-Control", cacheNoStore)
	respondJSON(w, nil, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: apiErr,
	})
}

// writeAuthError renders auth and authz middleware failures in the standard
// envelope.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	code := models.ErrCodeInternal
	switch status {
	case http.StatusUnauthorized:
		code = models.ErrCodeUnauthorized
	case http.StatusForbidden:
		code = models.ErrCodeForbidden
	}
	respondError(w, status, code, message, nil)
}

// rateLimitExceeded is the httprate limit handler.
func rateLimitExceeded(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusTooManyRequests, models.ErrCodeRateLimited, "Rate limit exceeded, please retry later", nil)
}

// validateRequest validates a struct using go-playground/validator and returns
// nil or a VALIDATION_ERROR APIError listing every failed field.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	return &models.APIError{
		Code:    models.ErrCodeValidation,
		Message: validationErr.Error(),
		Details: validationErr.Details(),
	}
}

// respondValidationError sends a 400 VALIDATION_ERROR.
func respondValidationError(w http.ResponseWriter, apiErr *models.APIError) {
	respondAPIError(w, http.StatusBadRequest, apiErr)
}

// paramError reports a query parameter that could not be parsed.
func paramError(key, want string) *models.APIError {
	return &models.APIError{
		Code:    models.ErrCodeValidation,
		Message: fmt.Sprintf("%s must be %s", key, want),
		Details: map[string]interface{}{
			"fields": []validation.FieldError{{Field: key, Tag: "type", Message: fmt.Sprintf("%s must be %s", key, want)}},
		},
	}
}

// getIntParam parses an integer query parameter. A missing parameter yields
// defaultValue; a malformed one is an error.
func getIntParam(r *http.Request, key string, defaultValue int) (int, *models.APIError) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, paramError(key, "an integer")
	}
	return intValue, nil
}

// getFloatParam parses a float query parameter the same way as getIntParam.
// ok is false when the parameter is absent.
func getFloatParam(r *http.Request, key string) (value float64, ok bool, apiErr *models.APIError) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, paramError(key, "a number")
	}
	return value, true, nil
}

// decodeJSONBody decodes a bounded JSON body into v, rejecting unknown fields.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
