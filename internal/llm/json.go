package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON extracts the outermost JSON object from a model response and
// unmarshals it into T. Markdown fences and text around the object are
// ignored.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start == -1 {
		return zero, fmt.Errorf("%w: no JSON object in response", ErrNoResponse)
	}
	if end < start {
		return zero, fmt.Errorf("%w: unterminated JSON object in response", ErrNoResponse)
	}

	var result T
	if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}
