package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	GroqBaseURL = "https://api.groq.com/openai/v1"
)

// chatClient talks to any OpenAI-compatible chat completions endpoint.
// Groq is reached by pointing BaseURL at GroqBaseURL.
type chatClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewChatClient creates a TextGenerator for an OpenAI-compatible API.
// An empty baseURL uses the OpenAI default.
func NewChatClient(apiKey, baseURL, model string, temperature float32) TextGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &chatClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		maxTokens:   4000,
	}
}

// NewGroqClient creates a Groq client through the OpenAI-compatible endpoint.
func NewGroqClient(apiKey, model string, temperature float32) TextGenerator {
	return NewChatClient(apiKey, GroqBaseURL, model, temperature)
}

// GenerateContent sends a single user message and returns the first choice.
func (c *chatClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
			Model:            c.model,
		},
	}, nil
}
