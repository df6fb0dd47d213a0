// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package journey

import (
	"math"
	"regexp"
	"strconv"

	"github.com/tomtom215/dishatlas/internal/geo"
)

// UnknownEra is the fallback era reported for an empty history.
const UnknownEra = "Unknown"

// Year label patterns, tried in order.
var (
	bcePattern     = regexp.MustCompile(`(?i)(\d{1,4})\s*(?:BCE|BC)`)
	centuryPattern = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)\s+century`)
	yearPattern    = regexp.MustCompile(`\d{3,4}`)

	// bceSuffixPattern detects a century label that also carries an era marker.
	bceSuffixPattern = regexp.MustCompile(`(?i)\bB\.?C\.?(?:E\.?)?(?:\W|$)`)
)

// TimelineSpan is the derived time range of a history.
// When Parsed is false, Years is meaningless and FallbackEra should be shown.
type TimelineSpan struct {
	Years       int    `json:"years"`
	Parsed      bool   `json:"parsed"`
	FallbackEra string `json:"fallback_era"`
}

// ComputeTotalDistance sums the Haversine distance between consecutive located
// steps and rounds the total to the nearest 100 km. Unlocated steps are ignored.
func ComputeTotalDistance(steps []Step) int {
	positions := locatedPositions(steps)
	if len(positions) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(positions); i++ {
		total += geo.Distance(positions[i-1], positions[i])
	}

	return int(math.Round(total/100) * 100)
}

// ExtractYear parses a free-text era label into a signed year. BCE years are
// negative and a century resolves to its midpoint ("19th century" is 1850).
// The boolean is false when no rule matches.
//
// This is a heuristic, not a date parser: "the 1800s" yields 1800.
func ExtractYear(label string) (int, bool) {
	if m := bcePattern.FindStringSubmatch(label); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return -n, true
		}
	}

	if m := centuryPattern.FindStringSubmatch(label); m != nil {
		c, err := strconv.Atoi(m[1])
		if err == nil {
			return (c-1)*100 + 50, true
		}
	}

	if m := yearPattern.FindString(label); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return n, true
		}
	}

	return 0, false
}

// IsAmbiguousEra reports whether a label names a century before the common era
// ("5th century BCE"). ExtractYear resolves these with the common-era century rule,
// so callers that display the span should qualify it.
func IsAmbiguousEra(label string) bool {
	return centuryPattern.MatchString(label) && bceSuffixPattern.MatchString(label)
}

// ComputeTimelineSpan measures the distance in years between the first and last
// step. The fallback era is always the first step's raw label, or UnknownEra for
// an empty history.
func ComputeTimelineSpan(steps []Step) TimelineSpan {
	if len(steps) == 0 {
		return TimelineSpan{FallbackEra: UnknownEra}
	}

	span := TimelineSpan{FallbackEra: steps[0].Year}

	first, okFirst := ExtractYear(steps[0].Year)
	last, okLast := ExtractYear(steps[len(steps)-1].Year)
	if !okFirst || !okLast {
		return span
	}

	span.Years = last - first
	if span.Years < 0 {
		span.Years = -span.Years
	}
	span.Parsed = true
	return span
}

// CountStops returns the number of located steps.
func CountStops(steps []Step) int {
	n := 0
	for _, s := range steps {
		if s.Located() {
			n++
		}
	}
	return n
}
