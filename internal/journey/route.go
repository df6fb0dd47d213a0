// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package journey

import (
	"github.com/tomtom215/dishatlas/internal/geo"
)

// RouteArcPoints is the number of points interpolated between each pair of stops.
const RouteArcPoints = 50

// Route is a single continuous polyline in [lon, lat] order.
type Route struct {
	Coordinates []geo.Position `json:"coordinates"`

	// Interpolated is false when the route is the straight stop list, either
	// because it has fewer than two stops or because an arc could not be computed.
	Interpolated bool `json:"interpolated"`
}

// Stops returns the distinct cluster coordinates in the order the step sequence
// first visits them.
func Stops(steps []Step, clusters []Cluster) []geo.Position {
	byStep := make(map[int]geo.Position)
	for _, c := range clusters {
		pos := c.Position()
		for _, idx := range c.MemberIndices {
			byStep[idx] = pos
		}
	}

	stops := make([]geo.Position, 0, len(clusters))
	emitted := make(map[geo.Position]struct{}, len(clusters))
	for i := range steps {
		pos, ok := byStep[i]
		if !ok {
			continue
		}
		if _, seen := emitted[pos]; seen {
			continue
		}
		emitted[pos] = struct{}{}
		stops = append(stops, pos)
	}

	return stops
}

// BuildRoute connects the cluster coordinates visited by steps with great-circle
// arcs of RouteArcPoints points each. Shared endpoints between arcs appear once.
// If any arc fails the whole route falls back to straight segments.
func BuildRoute(steps []Step, clusters []Cluster) Route {
	stops := Stops(steps, clusters)
	if len(stops) < 2 {
		return Route{Coordinates: stops}
	}

	coords := make([]geo.Position, 0, (len(stops)-1)*(RouteArcPoints-1)+1)
	for i := 0; i < len(stops)-1; i++ {
		arc, err := geo.GreatCircle(stops[i], stops[i+1], RouteArcPoints)
		if err != nil {
			return Route{Coordinates: stops}
		}
		if i < len(stops)-2 {
			arc = arc[:len(arc)-1]
		}
		coords = append(coords, arc...)
	}

	return Route{Coordinates: coords, Interpolated: true}
}
