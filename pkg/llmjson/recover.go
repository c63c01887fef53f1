// Package llmjson recovers JSON objects from free-text model replies.
//
// The extraction is a heuristic: it takes the substring between the first
// '{' and the last '}'. Braces inside quoted text that precede the real
// object corrupt the result; callers that need certainty should ask the
// model for JSON mode and use Decode as the tolerant fallback.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when the text contains no '{' ... '}' span.
var ErrNoJSON = errors.New("could not find valid JSON in the response")

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// Extract returns the substring from the first '{' to the last '}'.
func Extract(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// Decode parses text into v: first as a whole, then with fences stripped,
// then the first-'{'/last-'}' substring.
func Decode(text string, v interface{}) error {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && json.Unmarshal([]byte(trimmed), v) == nil {
		return nil
	}
	if unfenced := StripFences(trimmed); unfenced != trimmed {
		if json.Unmarshal([]byte(unfenced), v) == nil {
			return nil
		}
	}
	candidate, ok := Extract(trimmed)
	if !ok {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// Recover returns the JSON object found in text, or an empty object when
// nothing parses. It never returns nil.
func Recover(text string) map[string]interface{} {
	var out map[string]interface{}
	if err := Decode(text, &out); err != nil || out == nil {
		return map[string]interface{}{}
	}
	return out
}

// ErrorPayload is the placeholder analyzers emit instead of a result.
func ErrorPayload(message string) map[string]interface{} {
	return map[string]interface{}{"error": message}
}

// ParseFailurePayload keeps the raw reply next to the error so it can be inspected later.
func ParseFailurePayload(raw string) map[string]interface{} {
	return map[string]interface{}{
		"error":        "Failed to parse JSON response",
		"raw_response": raw,
	}
}
