// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package journey

import (
	"github.com/tomtom215/dishatlas/internal/geo"
)

// ClusterThresholdKm is the distance under which a step joins an existing cluster.
// The comparison is strict: a step exactly this far away founds a new cluster.
const ClusterThresholdKm = 20.0

// Cluster groups located steps that share a map marker.
type Cluster struct {
	// MemberIndices are indices into the step list, in assignment order.
	// The first member founded the cluster and labels its marker.
	MemberIndices []int `json:"member_indices"`

	// Latitude and Longitude are the founding step's coordinates.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Representative returns the index of the step that founded the cluster.
func (c Cluster) Representative() int {
	return c.MemberIndices[0]
}

// Position returns the representative coordinate as [lon, lat].
func (c Cluster) Position() geo.Position {
	return geo.NewPosition(c.Latitude, c.Longitude)
}

// ClusterSteps groups located steps in a single greedy pass. Each step joins the
// first cluster, in creation order, whose representative coordinate is closer than
// ClusterThresholdKm; otherwise it founds a new cluster. Unlocated steps are skipped.
//
// Runs in O(n·k) for n steps and k clusters.
func ClusterSteps(steps []Step) []Cluster {
	clusters := make([]Cluster, 0)

	for i, s := range steps {
		pos, ok := s.Position()
		if !ok {
			continue
		}

		joined := false
		for c := range clusters {
			if geo.Distance(clusters[c].Position(), pos) < ClusterThresholdKm {
				clusters[c].MemberIndices = append(clusters[c].MemberIndices, i)
				joined = true
				break
			}
		}

		if !joined {
			clusters = append(clusters, Cluster{
				MemberIndices: []int{i},
				Latitude:      pos.Lat(),
				Longitude:     pos.Lon(),
			})
		}
	}

	return clusters
}
