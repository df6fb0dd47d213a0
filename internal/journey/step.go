// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package journey

import (
	"github.com/tomtom215/dishatlas/internal/geo"
)

// Step is one dated, optionally located beat in a dish's history.
// A nil Latitude and Longitude marks a worldwide event.
type Step struct {
	Year        string   `json:"year" validate:"required,max=64"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// Located reports whether both coordinates are present and in range.
func (s Step) Located() bool {
	return s.Latitude != nil && s.Longitude != nil && geo.ValidCoordinate(*s.Latitude, *s.Longitude)
}

// Position returns the step's [lon, lat] position and whether it is located.
func (s Step) Position() (geo.Position, bool) {
	if !s.Located() {
		return geo.Position{}, false
	}
	return geo.NewPosition(*s.Latitude, *s.Longitude), true
}

// NewLocatedStep is a convenience constructor for a step with coordinates.
func NewLocatedStep(year, title string, lat, lon float64) Step {
	return Step{Year: year, Title: title, Latitude: &lat, Longitude: &lon}
}

// NewGlobalStep builds a step without a location.
func NewGlobalStep(year, title string) Step {
	return Step{Year: year, Title: title}
}

// NormalizeSteps returns a copy of steps where every step with a missing, partial or
// out-of-range coordinate pair is unlocated (both coordinates nil). The input is not
// modified.
func NormalizeSteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		if s.Located() {
			lat, lon := *s.Latitude, *s.Longitude
			s.Latitude, s.Longitude = &lat, &lon
		} else {
			s.Latitude, s.Longitude = nil, nil
		}
		out[i] = s
	}
	return out
}

// locatedPositions returns the positions of located steps in input order.
func locatedPositions(steps []Step) []geo.Position {
	positions := make([]geo.Position, 0, len(steps))
	for _, s := range steps {
		if p, ok := s.Position(); ok {
			positions = append(positions, p)
		}
	}
	return positions
}
