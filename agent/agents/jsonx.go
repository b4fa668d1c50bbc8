package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

// StripCodeFences removes a surrounding markdown code fence, if any. Models
// often wrap JSON output in ```json blocks despite instructions.
func StripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ParseStructured decodes a structured model reply, tolerating code fences.
func ParseStructured[T any](raw string) (T, error) {
	var out T
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return out, fmt.Errorf("%w: empty structured response", contractx.ErrSchemaViolation)
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return out, fmt.Errorf("%w: decode structured response: %v", contractx.ErrSchemaViolation, err)
	}
	return out, nil
}
