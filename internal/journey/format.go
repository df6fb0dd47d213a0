// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package journey

import (
	"strconv"
	"strings"
)

// FormatCompact renders n with a K or M suffix once it reaches a thousand or a
// million, keeping one decimal place and dropping a trailing ".0".
func FormatCompact(n int) string {
	switch {
	case n >= 1_000_000:
		return compactUnit(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return compactUnit(float64(n)/1_000) + "K"
	default:
		return strconv.Itoa(n)
	}
}

func compactUnit(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}

// FormatDistance renders a distance in kilometers for the stats panel.
func FormatDistance(km int) string {
	if km == 0 {
		return "0 km"
	}
	return FormatCompact(km) + " km"
}

// FormatSpan renders a timeline span. Unparsed spans show the raw era label.
func FormatSpan(span TimelineSpan) string {
	if !span.Parsed {
		return span.FallbackEra
	}
	return "~" + FormatCompact(span.Years)
}

// FormatStops renders the stop count.
func FormatStops(stops int) string {
	return strconv.Itoa(stops)
}
