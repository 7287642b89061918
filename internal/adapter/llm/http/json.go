package http

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	// Greedy match from the first ``` to the LAST ``` so nested code blocks
	// inside JSON string values (e.g. example snippets in recommendations)
	// do not truncate the extraction.
	jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*)```")
)

// ExtractJSONFromMarkdown extracts JSON from markdown code blocks.
//
// Supports both ```json and ``` fences. Returns the fenced content when a
// block is found, otherwise the trimmed original text (which might already
// be raw JSON).
func ExtractJSONFromMarkdown(text string) string {
	matches := jsonBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// ParseReviewPayload parses the AI response text into a loose key/value
// payload. Handles both markdown-wrapped and raw JSON. The payload is kept
// untyped here; defensive normalization into the result model happens at
// the domain boundary.
func ParseReviewPayload(text string) (map[string]any, error) {
	jsonText := ExtractJSONFromMarkdown(text)

	var payload map[string]any
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON review: %w", err)
	}

	return payload, nil
}
