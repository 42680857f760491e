package ai

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/v0xg/uinav/internal/browser"
	"github.com/v0xg/uinav/internal/executor"
)

// ClaudeProvider implements the Provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
}

// NewClaudeProvider creates a new Claude provider
func NewClaudeProvider(model string) (*ClaudeProvider, error) {
	key, err := apiKey("UINAV_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")
	if err != nil {
		return nil, err
	}

	client := anthropic.NewClient(option.WithAPIKey(key))

	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}

	return &ClaudeProvider{
		client: &client,
		model:  model,
	}, nil
}

// SuggestActions drafts step actions from the page map and user prompt
func (p *ClaudeProvider) SuggestActions(ctx context.Context, pageMap *browser.PageMap, prompt string) ([]executor.Action, error) {
	return suggest(ctx, "Claude", p.complete, pageMap, prompt)
}

func (p *ClaudeProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("no text block in response")
}
