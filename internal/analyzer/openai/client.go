package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"claimrisk/internal/analyzer"
	"claimrisk/internal/config"
	"claimrisk/internal/port"
)

const providerName = "openai"

const systemPrompt = "You are an insurance claim risk assessor. Reply with a single JSON object and nothing else."

func init() {
	analyzer.RegisterProvider(providerName, func(cfg *config.ModelConfig) (port.ModelClient, error) {
		return NewClient(cfg)
	})
}

// Client implements port.ModelClient using the OpenAI chat completions API
// (or any compatible endpoint when a base URL is configured).
type Client struct {
	client          *goopenai.Client
	model           string
	temperature     float32
	maxOutputTokens int
}

// NewClient creates an OpenAI model client.
func NewClient(cfg *config.ModelConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.DefaultModel
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = goopenai.GPT4oMini
	}

	return &Client{
		client:          goopenai.NewClientWithConfig(clientConfig),
		model:           model,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

// Model returns the chat model name.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: input.Prompt},
		},
		MaxTokens:   c.maxOutputTokens,
		Temperature: c.temperature,
	}
	if input.Schema != nil {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, analyzer.NewTransportError(providerName, 0, errors.New("no choices in response"))
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &port.GenerateOutput{
		Text:      strings.TrimSpace(resp.Choices[0].Message.Content),
		ModelUsed: model,
	}, nil
}

func wrapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return analyzer.NewRateLimitError(providerName, err, 0)
		}
		return analyzer.NewTransportError(providerName, apiErr.HTTPStatusCode, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return analyzer.NewTransportError(providerName, reqErr.HTTPStatusCode, err)
	}
	return analyzer.NewTransportError(providerName, 0, err)
}
