// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

// Package events carries history notifications between the HTTP layer and
// its consumers (websocket clients, the search log, autocomplete) over a
// Watermill pub/sub.
package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dishatlas/internal/journey"
	"github.com/tomtom215/dishatlas/internal/models"
)

// Topics.
const (
	TopicHistoryGenerated = "history.generated"
	TopicHistorySearched  = "history.searched"
)

// ErrInvalidEvent is returned when a payload is missing required fields.
var ErrInvalidEvent = errors.New("invalid event")

// HistoryGenerated announces a history freshly produced by a model.
type HistoryGenerated struct {
	EventID    string    `json:"event_id"`
	HistoryID  string    `json:"history_id"`
	Dish       string    `json:"dish"`
	Source     string    `json:"source"`
	Model      string    `json:"model,omitempty"`
	Stops      int       `json:"stops"`
	DistanceKm int       `json:"distance_km"`
	Timestamp  time.Time `json:"timestamp"`
}

// HistorySearched records one history lookup, however it was answered.
type HistorySearched struct {
	EventID    string    `json:"event_id"`
	Dish       string    `json:"dish"`
	Source     string    `json:"source"`
	Origin     string    `json:"origin"`
	Stops      int       `json:"stops"`
	DistanceKm int       `json:"distance_km"`
	SpanYears  *int      `json:"span_years,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewHistoryGenerated builds the event for h.
func NewHistoryGenerated(eventID string, h *models.History, summary journey.Summary, now time.Time) HistoryGenerated {
	return HistoryGenerated{
		EventID:    eventID,
		HistoryID:  h.ID,
		Dish:       h.Dish,
		Source:     h.Source,
		Model:      h.Model,
		Stops:      summary.Stats.Stops,
		DistanceKm: summary.Stats.DistanceKm,
		Timestamp:  now,
	}
}

// NewHistorySearched builds the event for a lookup of h answered from origin.
func NewHistorySearched(eventID string, h *models.History, summary journey.Summary, origin string, now time.Time) HistorySearched {
	ev := HistorySearched{
		EventID:    eventID,
		Dish:       h.Dish,
		Source:     h.Source,
		Origin:     origin,
		Stops:      summary.Stats.Stops,
		DistanceKm: summary.Stats.DistanceKm,
		Timestamp:  now,
	}
	if summary.Stats.Span.Parsed {
		years := summary.Stats.Span.Years
		ev.SpanYears = &years
	}
	return ev
}

// Validate checks required fields.
func (e *HistoryGenerated) Validate() error {
	if e.EventID == "" || e.Dish == "" {
		return fmt.Errorf("%w: history.generated needs event_id and dish", ErrInvalidEvent)
	}
	return nil
}

// Validate checks required fields.
func (e *HistorySearched) Validate() error {
	if e.EventID == "" || e.Dish == "" {
		return fmt.Errorf("%w: history.searched needs event_id and dish", ErrInvalidEvent)
	}
	return nil
}

// Encode serializes an event after validating it.
func Encode(ev interface{ Validate() error }) ([]byte, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DecodeGenerated parses a history.generated payload.
func DecodeGenerated(data []byte) (HistoryGenerated, error) {
	var ev HistoryGenerated
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal history.generated: %w", err)
	}
	return ev, ev.Validate()
}

// DecodeSearched parses a history.searched payload.
func DecodeSearched(data []byte) (HistorySearched, error) {
	var ev HistorySearched
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal history.searched: %w", err)
	}
	return ev, ev.Validate()
}
