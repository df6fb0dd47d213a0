// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package narrative

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dishatlas/internal/journey"
	"github.com/tomtom215/dishatlas/internal/validation"
)

// ErrUnusableCompletion wraps every reason a completion could not be turned
// into a history.
var ErrUnusableCompletion = errors.New("completion is not a usable history")

var (
	ErrNoJSON  = fmt.Errorf("%w: no JSON object found", ErrUnusableCompletion)
	ErrNoSteps = fmt.Errorf("%w: no valid steps", ErrUnusableCompletion)
)

// Draft is a parsed, validated completion before it becomes a stored History.
type Draft struct {
	Dish    string
	Summary string
	Steps   []journey.Step

	// Dropped counts steps rejected for a missing year or title.
	Dropped int
}

type rawHistory struct {
	Dish    string    `json:"dish"`
	Summary string    `json:"summary"`
	Steps   []rawStep `json:"steps"`
}

type rawStep struct {
	Year        flexLabel      `json:"year"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Latitude    flexCoordinate `json:"latitude"`
	Longitude   flexCoordinate `json:"longitude"`
}

// flexLabel accepts a JSON string or a bare number, so "year": 1889 survives.
type flexLabel string

func (l *flexLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = flexLabel(s)
	default:
		*l = flexLabel(data)
	}
	return nil
}

// flexCoordinate accepts a number, a numeric string or null. Anything else
// leaves the coordinate unset rather than failing the whole history.
type flexCoordinate struct {
	value *float64
}

func (c *flexCoordinate) UnmarshalJSON(data []byte) error {
	c.value = nil
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	c.value = &v
	return nil
}

// ParseHistory turns raw model output into a Draft.
//
// Markdown code fences are stripped and the outermost JSON object is decoded.
// Steps without a year or title are dropped; steps with a missing or
// out-of-range coordinate are kept as worldwide events.
func ParseHistory(raw string) (*Draft, error) {
	payload, ok := extractJSONObject(stripCodeFences(raw))
	if !ok {
		return nil, ErrNoJSON
	}

	var decoded rawHistory
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", ErrUnusableCompletion, err)
	}

	draft := &Draft{
		Dish:    strings.TrimSpace(decoded.Dish),
		Summary: strings.TrimSpace(decoded.Summary),
	}
	steps := make([]journey.Step, 0, len(decoded.Steps))
	for _, rs := range decoded.Steps {
		step := journey.Step{
			Year:        strings.TrimSpace(string(rs.Year)),
			Title:       strings.TrimSpace(rs.Title),
			Description: strings.TrimSpace(rs.Description),
			Latitude:    rs.Latitude.value,
			Longitude:   rs.Longitude.value,
		}
		if verr := validation.ValidateStruct(step); verr != nil {
			if !onlyCoordinateErrors(verr) {
				draft.Dropped++
				continue
			}
			step.Latitude, step.Longitude = nil, nil
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	draft.Steps = journey.NormalizeSteps(steps)
	return draft, nil
}

func onlyCoordinateErrors(verr *validation.RequestValidationError) bool {
	for _, fe := range verr.Fields {
		if fe.Field != "latitude" && fe.Field != "longitude" {
			return false
		}
	}
	return true
}

// stripCodeFences drops Markdown fence lines such as ```json and ```.
func stripCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// extractJSONObject returns the text between the first '{' and the last '}'.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
