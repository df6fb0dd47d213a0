// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package models

import (
	"github.com/tomtom215/dishatlas/internal/geo"
)

// GeoJSON object types used by the globe.
const (
	GeoJSONFeatureCollection = "FeatureCollection"
	GeoJSONFeature           = "Feature"
	GeoJSONPoint             = "Point"
	GeoJSONLineString        = "LineString"
)

// FeatureCollection is an RFC 7946 feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is an RFC 7946 feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry holds either a Point or a LineString. Coordinates are [lon, lat].
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// NewFeatureCollection wraps features, never emitting a null array.
func NewFeatureCollection(features ...Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: GeoJSONFeatureCollection, Features: features}
}

// NewPointFeature builds a Point feature.
func NewPointFeature(p geo.Position, props map[string]interface{}) Feature {
	if props == nil {
		props = map[string]interface{}{}
	}
	return Feature{
		Type:       GeoJSONFeature,
		Geometry:   Geometry{Type: GeoJSONPoint, Coordinates: [2]float64(p)},
		Properties: props,
	}
}

// NewLineFeature builds a LineString feature.
func NewLineFeature(coords []geo.Position, props map[string]interface{}) Feature {
	if props == nil {
		props = map[string]interface{}{}
	}
	line := make([][2]float64, len(coords))
	for i, c := range coords {
		line[i] = [2]float64(c)
	}
	return Feature{
		Type:       GeoJSONFeature,
		Geometry:   Geometry{Type: GeoJSONLineString, Coordinates: line},
		Properties: props,
	}
}
