// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

// Package discovery serves the featured dishes shown on an idle globe,
// dish-name autocomplete, and "what was invented near here" lookups.
package discovery

import (
	"math/rand"
	"sync"

	"github.com/tomtom215/dishatlas/internal/cache"
	"github.com/tomtom215/dishatlas/internal/models"
)

// gridCellKm is the spatial index cell size. Most nearby queries use radii of
// a few hundred to a couple of thousand kilometres.
const gridCellKm = 250

// Nearby is a featured dish with its distance from the query point.
type Nearby struct {
	Dish       models.FeaturedDish `json:"dish"`
	DistanceKm float64             `json:"distance_km"`
}

// Catalogue indexes a fixed list of featured dishes for random sampling,
// prefix search and radius search. Generated histories can be added to the
// autocomplete index at runtime.
type Catalogue struct {
	mu  sync.Mutex
	rng *rand.Rand

	dishes []models.FeaturedDish
	trie   *cache.Trie
	grid   *cache.SpatialHashGrid
}

// New indexes dishes. src drives Featured; pass a fixed source for
// deterministic sampling. A nil src is seeded from the clock.
func New(dishes []models.FeaturedDish, src rand.Source) *Catalogue {
	if src == nil {
		src = rand.NewSource(rand.Int63()) //nolint:gosec // sampling, not security
	}

	c := &Catalogue{
		rng:    rand.New(src), //nolint:gosec // sampling, not security
		dishes: make([]models.FeaturedDish, 0, len(dishes)),
		trie:   cache.NewTrie(),
		grid:   cache.NewSpatialHashGrid(gridCellKm),
	}
	seen := make(map[string]bool, len(dishes))
	for _, d := range dishes {
		key := models.DishKey(d.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		c.dishes = append(c.dishes, d)
		c.trie.Insert(d.Name)
		c.grid.Insert(key, d.Latitude, d.Longitude, d)
	}
	return c
}

// NewDefault indexes the built-in catalogue.
func NewDefault(src rand.Source) *Catalogue {
	return New(DefaultDishes, src)
}

// Len is the number of featured dishes.
func (c *Catalogue) Len() int {
	return len(c.dishes)
}

// Featured returns n distinct dishes in random order. n is clamped to
// [0, Len()].
func (c *Catalogue) Featured(n int) []models.FeaturedDish {
	if n > len(c.dishes) {
		n = len(c.dishes)
	}
	if n <= 0 {
		return []models.FeaturedDish{}
	}

	c.mu.Lock()
	perm := c.rng.Perm(len(c.dishes))
	c.mu.Unlock()

	out := make([]models.FeaturedDish, n)
	for i := 0; i < n; i++ {
		out[i] = c.dishes[perm[i]]
	}
	return out
}

// Suggest returns up to limit dish names starting with prefix, most
// requested first.
func (c *Catalogue) Suggest(prefix string, limit int) []cache.Suggestion {
	out := c.trie.Suggest(prefix, limit)
	if out == nil {
		return []cache.Suggestion{}
	}
	return out
}

// AddDish records a searched or generated dish name so it shows up in
// autocomplete. Repeated names gain weight.
func (c *Catalogue) AddDish(name string) {
	c.trie.Insert(models.NormalizeDishName(name))
}

// Nearby returns featured dishes whose origin lies within radiusKm of the
// point, closest first.
func (c *Catalogue) Nearby(lat, lon, radiusKm float64) []Nearby {
	entries := c.grid.QueryNearby(lat, lon, radiusKm)
	out := make([]Nearby, 0, len(entries))
	for _, e := range entries {
		dish, ok := e.Data.(models.FeaturedDish)
		if !ok {
			continue
		}
		out = append(out, Nearby{Dish: dish, DistanceKm: e.DistanceKm})
	}
	return out
}
