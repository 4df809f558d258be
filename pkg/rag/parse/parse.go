// Package parse centralizes the defensive handling of model output that
// is supposed to be JSON but often is not. Every structured stage goes
// through DecodeOr instead of hand-rolling extraction.
package parse

import (
	"encoding/json"
	"strings"
)

// ExtractJSON isolates the JSON payload from free-form model text. It
// prefers a fenced code block, then falls back to the span between the
// first '{' and the last '}'. The boolean reports whether a candidate
// span was found at all.
func ExtractJSON(response string) (string, bool) {
	if fenced, ok := extractFenced(response); ok {
		return fenced, true
	}

	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return "", false
	}

	return response[startIdx : endIdx+1], true
}

func extractFenced(response string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		open := strings.Index(response, marker)
		if open == -1 {
			continue
		}
		rest := response[open+len(marker):]
		closing := strings.Index(rest, "```")
		if closing == -1 {
			continue
		}
		body := strings.TrimSpace(rest[:closing])
		if strings.HasPrefix(body, "{") {
			return body, true
		}
	}
	return "", false
}

// DecodeOr unmarshals the JSON object found in raw into T. When no
// object can be located or it does not parse, the stage-specific
// fallback is returned with ok=false so the caller can log and continue.
func DecodeOr[T any](raw string, fallback T) (T, bool) {
	jsonContent, found := ExtractJSON(raw)
	if !found {
		return fallback, false
	}

	var out T
	if err := json.Unmarshal([]byte(jsonContent), &out); err != nil {
		return fallback, false
	}

	return out, true
}

// Clamp01 forces a model-reported score into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
