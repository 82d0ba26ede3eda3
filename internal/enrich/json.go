package enrich

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// parseResult decodes a model response into a Result, tolerating markdown
// code fences around the JSON payload. Values outside the fixed
// vocabularies are normalized; an undecodable payload is an error.
func parseResult(text string) (*Result, error) {
	text = stripFences(text)
	if text == "" {
		return nil, errors.New("empty model response")
	}

	var r Result
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("parsing model response: %w", err)
	}

	if r.Category == "" {
		r.Category = "General"
	}
	if len(r.Tags) > maxTags {
		r.Tags = r.Tags[:maxTags]
	}
	switch r.Sentiment {
	case "positive", "neutral", "negative":
	default:
		r.Sentiment = "neutral"
	}

	return &r, nil
}

// stripFences removes a surrounding markdown code block, if any.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}
