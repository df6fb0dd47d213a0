// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package narrative

import (
	"fmt"
)

// MinSteps and MaxSteps bound how many steps the model is asked for.
const (
	MinSteps = 5
	MaxSteps = 10
)

const systemPrompt = `You are a culinary historian. You answer with a single JSON object and nothing else: no Markdown, no code fences, no commentary.`

const userPromptTemplate = `Trace the history of the dish %q from its earliest known origins to today.

Respond with exactly this JSON shape:
{
  "dish": "<canonical dish name>",
  "summary": "<two or three sentences>",
  "steps": [
    {
      "year": "<a year or era label such as \"1889\", \"c. 1500 BCE\" or \"18th century\">",
      "title": "<short headline>",
      "description": "<one or two sentences>",
      "latitude": <decimal degrees, or null for a worldwide event>,
      "longitude": <decimal degrees, or null for a worldwide event>
    }
  ]
}

Rules:
- Between %d and %d steps, in chronological order.
- latitude and longitude are JSON numbers, never strings. Use null for both when the step has no single place.
- Place each step where it happened, not where the dish is popular today.
- If the dish is unknown or not a food, return {"dish": %q, "summary": "", "steps": []}.`

// BuildPrompt returns the chat messages asking for dish's history as strict JSON.
func BuildPrompt(dish string) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPromptTemplate, dish, MinSteps, MaxSteps, dish)},
	}
}
