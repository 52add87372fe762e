// Package jsonutil decodes JSON bodies that may have been relayed from a
// language model: wrapped in markdown code fences or embedded in prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// StripMarkdownFences removes ```json ... ``` or ``` ... ``` wrapping from text.
// Returns the original text if no fences are found.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}

	return strings.Join(lines[1:end], "\n")
}

// ExtractObject returns the outermost {...} span of text.
func ExtractObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found")
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return "", fmt.Errorf("no closing } found")
	}
	return text[start : end+1], nil
}

// Decode unmarshals raw into T. Well-formed JSON is decoded directly;
// otherwise fences are stripped and the embedded object is decoded.
func Decode[T any](raw []byte) (T, error) {
	var result T
	if err := json.Unmarshal(raw, &result); err == nil {
		return result, nil
	}

	obj, err := ExtractObject(StripMarkdownFences(string(raw)))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	result = *new(T)
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		var zero T
		preview := obj
		if len(preview) > 200 {
			n := 200
			for n > 0 && !utf8.RuneStart(preview[n]) {
				n--
			}
			preview = preview[:n] + "..."
		}
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return result, nil
}
