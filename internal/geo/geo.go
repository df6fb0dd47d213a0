// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for all distance calculations.
const EarthRadiusKm = 6371.0

// degenerateEpsilon is the angular tolerance (radians, about 6 m) within which two
// points are treated as coincident or antipodal. asin loses precision near π, so
// this must stay well above float64 rounding error.
const degenerateEpsilon = 1e-6

var (
	// ErrAntipodal is returned when no unique great circle joins two points.
	ErrAntipodal = errors.New("geo: points are antipodal")

	// ErrCoincident is returned when both endpoints are the same point.
	ErrCoincident = errors.New("geo: points are coincident")

	// ErrNonFinite is returned when a coordinate is NaN or infinite.
	ErrNonFinite = errors.New("geo: coordinate is not finite")

	// ErrTooFewPoints is returned when fewer than two points are requested.
	ErrTooFewPoints = errors.New("geo: arc needs at least two points")
)

// Position is a GeoJSON position: [longitude, latitude].
type Position [2]float64

// NewPosition builds a Position from latitude and longitude.
func NewPosition(lat, lon float64) Position {
	return Position{lon, lat}
}

// Lon returns the longitude.
func (p Position) Lon() float64 { return p[0] }

// Lat returns the latitude.
func (p Position) Lat() float64 { return p[1] }

// ValidLatitude reports whether lat is within [-90, 90].
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lon is within [-180, 180].
func ValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && lon >= -180 && lon <= 180
}

// ValidCoordinate reports whether both values are in range.
func ValidCoordinate(lat, lon float64) bool {
	return ValidLatitude(lat) && ValidLongitude(lon)
}

// Haversine calculates the great-circle distance in kilometers between two points
// given in decimal degrees.
//
// a = sin²(Δφ/2) + cos φ1 ⋅ cos φ2 ⋅ sin²(Δλ/2)
// c = 2 ⋅ atan2(√a, √(1−a))
// d = R ⋅ c
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLat := toRadians(lat2 - lat1)
	deltaLon := toRadians(lon2 - lon1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Distance returns the Haversine distance between two positions.
func Distance(a, b Position) float64 {
	return Haversine(a.Lat(), a.Lon(), b.Lat(), b.Lon())
}

// GreatCircle returns npoints positions along the great circle from -> to,
// both endpoints included. The endpoints are returned exactly as given.
func GreatCircle(from, to Position, npoints int) ([]Position, error) {
	if npoints < 2 {
		return nil, ErrTooFewPoints
	}
	for _, v := range []float64{from[0], from[1], to[0], to[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFinite
		}
	}

	lat1, lon1 := toRadians(from.Lat()), toRadians(from.Lon())
	lat2, lon2 := toRadians(to.Lat()), toRadians(to.Lon())

	// Angular distance between the endpoints.
	sinHalfLat := math.Sin((lat2 - lat1) / 2)
	sinHalfLon := math.Sin((lon2 - lon1) / 2)
	h := sinHalfLat*sinHalfLat + math.Cos(lat1)*math.Cos(lat2)*sinHalfLon*sinHalfLon
	d := 2 * math.Asin(math.Min(1, math.Sqrt(h)))

	switch {
	case d < degenerateEpsilon:
		return nil, ErrCoincident
	case math.Pi-d < degenerateEpsilon:
		return nil, ErrAntipodal
	}

	sinD := math.Sin(d)
	if sinD == 0 {
		return nil, ErrAntipodal
	}

	out := make([]Position, npoints)
	out[0] = from
	out[npoints-1] = to

	for i := 1; i < npoints-1; i++ {
		f := float64(i) / float64(npoints-1)
		a := math.Sin((1-f)*d) / sinD
		b := math.Sin(f*d) / sinD

		x := a*math.Cos(lat1)*math.Cos(lon1) + b*math.Cos(lat2)*math.Cos(lon2)
		y := a*math.Cos(lat1)*math.Sin(lon1) + b*math.Cos(lat2)*math.Sin(lon2)
		z := a*math.Sin(lat1) + b*math.Sin(lat2)

		lat := math.Atan2(z, math.Sqrt(x*x+y*y))
		lon := math.Atan2(y, x)
		out[i] = Position{toDegrees(lon), toDegrees(lat)}
	}

	return out, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
