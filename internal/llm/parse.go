package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/curamyn/curamyn/internal/types"
)

// ParseResult parses an analyzer reply as strict JSON, tolerating a
// markdown code-fence wrapper and surrounding prose.
func ParseResult(raw string) (*types.InteractionResult, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var result types.InteractionResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	if result.Text() == "" {
		return nil, fmt.Errorf("result has no response text")
	}

	return &result, nil
}

// extractJSON finds the outermost JSON object in model output, stripping
// ```json fences if present.
func extractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in output")
	}

	return cleaned[start : end+1], nil
}
