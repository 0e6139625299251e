package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON parses a model response into dst. Models occasionally wrap the
// JSON in prose or a fenced code block, so parsing falls back in order: the
// raw content, the first fenced block, then the outermost brace span. If all
// three fail the caller gets an error and must not store a partial result.
func ExtractJSON(content string, dst any) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("empty response")
	}

	if err := json.Unmarshal([]byte(content), dst); err == nil {
		return nil
	}

	if fenced, ok := fencedBlock(content); ok {
		if err := json.Unmarshal([]byte(fenced), dst); err == nil {
			return nil
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), dst); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to extract JSON from response")
}

// fencedBlock returns the body of the first ``` fence, tolerating a language
// tag on the opening line.
func fencedBlock(content string) (string, bool) {
	start := strings.Index(content, "```")
	if start == -1 {
		return "", false
	}
	rest := content[start+3:]
	if nl := strings.Index(rest, "\n"); nl != -1 {
		// Drop the language tag line, e.g. ```json.
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
