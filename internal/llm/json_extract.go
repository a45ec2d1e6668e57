package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSONObject is returned when no candidate in a response decodes to a JSON object.
var ErrNoJSONObject = errors.New("no valid JSON object found in response")

// fencePattern matches markdown code fences with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```([A-Za-z]*)[ \t]*\r?\n?(.*?)```")

// ExtractJSONObject decodes a JSON object out of model output. The whole
// response is tried first, then every fenced block in order; the first
// candidate that parses wins.
func ExtractJSONObject(response string) (map[string]json.RawMessage, error) {
	if obj, ok := decodeObject(response); ok {
		return obj, nil
	}

	for _, match := range fencePattern.FindAllStringSubmatch(response, -1) {
		if obj, ok := decodeObject(match[2]); ok {
			return obj, nil
		}
	}

	return nil, ErrNoJSONObject
}

func decodeObject(s string) (map[string]json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
