// Package ai drafts scripted navigation steps from a crawled page and a
// plain-language description, using Claude or OpenAI.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/v0xg/uinav/internal/browser"
	"github.com/v0xg/uinav/internal/executor"
)

// Provider drafts the actions of a navigation step
type Provider interface {
	SuggestActions(ctx context.Context, pageMap *browser.PageMap, prompt string) ([]executor.Action, error)
}

// NewProvider creates a new AI provider based on the provider name
func NewProvider(name, model string) (Provider, error) {
	switch name {
	case "claude", "anthropic":
		return NewClaudeProvider(model)
	case "openai", "gpt":
		return NewOpenAIProvider(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}

// apiKey returns the first non-empty environment variable of names.
func apiKey(names ...string) (string, error) {
	for _, name := range names {
		if key := os.Getenv(name); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%s environment variable required", strings.Join(names, " or "))
}

// suggest runs complete on the step-drafting prompt and parses the reply.
func suggest(ctx context.Context, vendor string, complete func(ctx context.Context, system, user string) (string, error), pageMap *browser.PageMap, prompt string) ([]executor.Action, error) {
	pageMapJSON, err := json.MarshalIndent(pageMap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page map: %w", err)
	}

	responseText, err := complete(ctx, systemPrompt, buildUserPrompt(string(pageMapJSON), prompt))
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", vendor, err)
	}
	if strings.TrimSpace(responseText) == "" {
		return nil, fmt.Errorf("empty response from %s", vendor)
	}

	actions, err := parseActionsJSON(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s response as JSON: %w\nResponse: %s", vendor, err, responseText)
	}
	for i, action := range actions {
		if err := action.Validate(); err != nil {
			return nil, fmt.Errorf("%s suggested an invalid action %d: %w", vendor, i+1, err)
		}
	}
	return actions, nil
}

// parseActionsJSON extracts and parses a JSON array from a response that may contain surrounding text
func parseActionsJSON(response string) ([]executor.Action, error) {
	var actions []executor.Action
	if err := json.Unmarshal([]byte(response), &actions); err == nil {
		return actions, nil
	}

	start := strings.Index(response, "[")
	if start == -1 {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	// Find the matching closing bracket, ignoring brackets inside strings
	depth, end := 0, -1
	inString, escaped := false, false
scan:
	for i := start; i < len(response); i++ {
		c := response[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				end = i + 1
				break scan
			}
		}
	}
	if end == -1 {
		return nil, fmt.Errorf("no matching closing bracket found")
	}

	if err := json.Unmarshal([]byte(response[start:end]), &actions); err != nil {
		return nil, fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return actions, nil
}
