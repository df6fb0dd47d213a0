// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

/*
Package journey turns a dish history (an ordered list of dated, optionally located
steps) into everything the globe needs to draw it.

# Components

  - Statistics: total travelled distance, timeline span and stop count, plus the
    compact display strings shown in the stats panel.
  - Clustering: greedy proximity grouping so nearby events share one marker.
  - Routes: a single [lon, lat] polyline between cluster locations, curved along
    great circles.

All functions are pure. They hold no state, perform no I/O and are safe for
concurrent use. Nothing here returns an error: unparseable years, invalid
coordinates and degenerate arcs all degrade to a less precise but valid result.

# Recomputation

Derive runs the whole pipeline in one call and is what the API layer invokes each
time a history is served. Clusters and routes are never updated incrementally.

# Clustering policy

ClusterSteps is first-match and order dependent. A cluster's representative
coordinate is the step that founded it and never moves, so two inputs with the same
steps in a different order can cluster differently. Do not replace this with a
centroid: marker placement for stored histories depends on the exact output.
*/
package journey
