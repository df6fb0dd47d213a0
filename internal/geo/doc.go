// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

/*
Package geo provides the spherical math used to place dish histories on the globe.

# Distances

Haversine returns the great-circle distance in kilometers between two points on a
sphere of radius EarthRadiusKm (6371 km). It is the same formula the spatial hash
grid in the cache package uses for radius queries.

# Great-circle arcs

GreatCircle interpolates a fixed number of points along the shortest path between
two [lon, lat] positions using spherical linear interpolation. Routes drawn with it
follow the globe's curvature instead of cutting through it.

The arc between antipodal points is undefined, and GreatCircle reports
ErrAntipodal for them rather than picking an arbitrary meridian. Callers that must
always produce a line fall back to straight segments.

# Coordinates

Positions are GeoJSON ordered: index 0 is longitude, index 1 is latitude.
*/
package geo
