// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package journey

// Stats holds the raw derived statistics.
type Stats struct {
	DistanceKm int          `json:"distance_km"`
	Span       TimelineSpan `json:"span"`
	Stops      int          `json:"stops"`
}

// Display holds the formatted strings for the stats panel.
type Display struct {
	Distance string `json:"distance"`
	Span     string `json:"span"`
	Stops    string `json:"stops"`
}

// Summary is everything the globe needs to render one history.
type Summary struct {
	Steps    []Step    `json:"steps"`
	Clusters []Cluster `json:"clusters"`
	Route    Route     `json:"route"`
	Stats    Stats     `json:"stats"`
	Display  Display   `json:"display"`

	// AmbiguousEras lists year labels such as "5th century BCE" whose parsed
	// value should not be trusted.
	AmbiguousEras []string `json:"ambiguous_eras,omitempty"`
}

// Derive normalizes steps and recomputes clusters, route and statistics from
// scratch.
func Derive(steps []Step) Summary {
	normalized := NormalizeSteps(steps)
	clusters := ClusterSteps(normalized)

	stats := Stats{
		DistanceKm: ComputeTotalDistance(normalized),
		Span:       ComputeTimelineSpan(normalized),
		Stops:      CountStops(normalized),
	}

	var ambiguous []string
	for _, s := range normalized {
		if IsAmbiguousEra(s.Year) {
			ambiguous = append(ambiguous, s.Year)
		}
	}

	return Summary{
		Steps:    normalized,
		Clusters: clusters,
		Route:    BuildRoute(normalized, clusters),
		Stats:    stats,
		Display: Display{
			Distance: FormatDistance(stats.DistanceKm),
			Span:     FormatSpan(stats.Span),
			Stops:    FormatStops(stats.Stops),
		},
		AmbiguousEras: ambiguous,
	}
}
