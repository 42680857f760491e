package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/v0xg/uinav/internal/browser"
	"github.com/v0xg/uinav/internal/executor"
)

// OpenAIProvider implements the Provider interface using OpenAI
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(model string) (*OpenAIProvider, error) {
	key, err := apiKey("UINAV_OPENAI_KEY", "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAIProvider{
		client: openai.NewClient(key),
		model:  model,
	}, nil
}

// SuggestActions drafts step actions from the page map and user prompt
func (p *OpenAIProvider) SuggestActions(ctx context.Context, pageMap *browser.PageMap, prompt string) ([]executor.Action, error) {
	return suggest(ctx, "OpenAI", p.complete, pageMap, prompt)
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
