// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package cache

import (
	"math"
	"sort"
	"sync"

	"github.com/tomtom215/dishatlas/internal/geo"
)

const kmPerDegree = 111.0

type cellKey struct {
	x, y int
}

// SpatialEntry is one indexed point.
type SpatialEntry struct {
	ID         string  `json:"id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
	Data       any     `json:"-"`
}

// SpatialHashGrid buckets points into fixed-size lat/lon cells so radius
// queries only touch nearby cells. Longitude wraps at the antimeridian and
// the search window widens toward the poles.
type SpatialHashGrid struct {
	mu       sync.RWMutex
	cellDeg  float64
	lonCells int
	cells    map[cellKey][]*SpatialEntry
	entries  map[string]*SpatialEntry
	keys     map[string]cellKey
}

// NewSpatialHashGrid creates a grid with cells roughly cellSizeKm wide at the
// equator. Non-positive sizes default to 250 km.
func NewSpatialHashGrid(cellSizeKm float64) *SpatialHashGrid {
	if cellSizeKm <= 0 {
		cellSizeKm = 250
	}
	cellDeg := cellSizeKm / kmPerDegree
	return &SpatialHashGrid{
		cellDeg:  cellDeg,
		lonCells: int(math.Ceil(360 / cellDeg)),
		cells:    make(map[cellKey][]*SpatialEntry),
		entries:  make(map[string]*SpatialEntry),
		keys:     make(map[string]cellKey),
	}
}

func (g *SpatialHashGrid) keyFor(lat, lon float64) cellKey {
	x := int(math.Floor((lon + 180) / g.cellDeg))
	return cellKey{x: g.wrapX(x), y: int(math.Floor(lat / g.cellDeg))}
}

func (g *SpatialHashGrid) wrapX(x int) int {
	x %= g.lonCells
	if x < 0 {
		x += g.lonCells
	}
	return x
}

// Insert adds or replaces the entry with the given id. Invalid coordinates
// are rejected.
func (g *SpatialHashGrid) Insert(id string, lat, lon float64, data any) bool {
	if !geo.ValidCoordinate(lat, lon) {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.entries[id]; ok {
		g.removeLocked(id)
	}

	key := g.keyFor(lat, lon)
	e := &SpatialEntry{ID: id, Latitude: lat, Longitude: lon, Data: data}
	g.cells[key] = append(g.cells[key], e)
	g.entries[id] = e
	g.keys[id] = key
	return true
}

// Remove deletes the entry with the given id.
func (g *SpatialHashGrid) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.entries[id]; !ok {
		return false
	}
	g.removeLocked(id)
	return true
}

func (g *SpatialHashGrid) removeLocked(id string) {
	key := g.keys[id]
	cell := g.cells[key]
	for i, e := range cell {
		if e.ID == id {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(g.cells, key)
	} else {
		g.cells[key] = cell
	}
	delete(g.entries, id)
	delete(g.keys, id)
}

// QueryNearby returns copies of entries within radiusKm of (lat, lon),
// nearest first, with DistanceKm filled in.
func (g *SpatialHashGrid) QueryNearby(lat, lon, radiusKm float64) []SpatialEntry {
	if radiusKm <= 0 || !geo.ValidCoordinate(lat, lon) {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []SpatialEntry
	consider := func(e *SpatialEntry) {
		d := geo.Haversine(lat, lon, e.Latitude, e.Longitude)
		if d <= radiusKm {
			c := *e
			c.DistanceKm = d
			out = append(out, c)
		}
	}

	radiusDeg := radiusKm / kmPerDegree
	maxLat := math.Abs(lat) + radiusDeg
	spanY := int(math.Ceil(radiusDeg/g.cellDeg)) + 1

	var spanX int
	if maxLat < 89 {
		lonDeg := radiusDeg / math.Cos(maxLat*math.Pi/180)
		spanX = int(math.Ceil(lonDeg/g.cellDeg)) + 1
	}

	// Near the poles or for very wide radii every column is in range.
	if maxLat >= 89 || 2*spanX+1 >= g.lonCells {
		for _, e := range g.entries {
			consider(e)
		}
	} else {
		center := g.keyFor(lat, lon)
		for dx := -spanX; dx <= spanX; dx++ {
			x := g.wrapX(center.x + dx)
			for dy := -spanY; dy <= spanY; dy++ {
				for _, e := range g.cells[cellKey{x: x, y: center.y + dy}] {
					consider(e)
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Size returns the number of entries.
func (g *SpatialHashGrid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Clear removes every entry.
func (g *SpatialHashGrid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells = make(map[cellKey][]*SpatialEntry)
	g.entries = make(map[string]*SpatialEntry)
	g.keys = make(map[string]cellKey)
}
