// Package llm provides the LLM provider and the text analyzers built on it.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/curamyn/curamyn/internal/config"
	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/media"
)

// Provider is the interface for LLM backends.
type Provider interface {
	// Identity
	Name() string
	Model() string

	// SimpleMessage sends a single user message with a system prompt and
	// returns the response text. No tools, no streaming.
	SimpleMessage(ctx context.Context, userMessage, systemPrompt string) (string, error)

	// VisionMessage sends a prompt with an attached image to a
	// vision-capable model and returns the response text.
	VisionMessage(ctx context.Context, prompt string, img *media.ImageData) (string, error)
}

// OpenAIProvider implements Provider for OpenAI-compatible APIs.
// Works with OpenAI and compatible servers via BaseURL.
type OpenAIProvider struct {
	name      string
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIProvider creates a provider from LLM config.
func NewOpenAIProvider(cfg config.LLMConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1200
	}

	L_info("llm: openai provider initialized", "model", model, "baseUrl", cfg.BaseURL)

	return &OpenAIProvider{
		name:      "openai",
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (p *OpenAIProvider) Name() string  { return p.name }
func (p *OpenAIProvider) Model() string { return p.model }

// SimpleMessage sends a simple user message and returns the response text.
func (p *OpenAIProvider) SimpleMessage(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// VisionMessage sends a prompt plus an inline image.
func (p *OpenAIProvider) VisionMessage(ctx context.Context, prompt string, img *media.ImageData) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    img.DataURL(),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
