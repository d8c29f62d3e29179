package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"claimrisk/internal/analyzer"
	"claimrisk/internal/config"
	"claimrisk/internal/port"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	providerName = "gemini"
)

func init() {
	analyzer.RegisterProvider(providerName, func(cfg *config.ModelConfig) (port.ModelClient, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return NewClient(cfg), nil
	})
}

// Client implements port.ModelClient using the Gemini generateContent API
// with server-side structured output.
type Client struct {
	apiKey          string
	model           string
	endpoint        string
	temperature     float32
	maxOutputTokens int
	client          *http.Client
}

// NewClient creates a Gemini model client.
func NewClient(cfg *config.ModelConfig) *Client {
	return newClient(cfg, "")
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ModelConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.ModelConfig, endpoint string) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Client{
		apiKey:          cfg.APIKey,
		model:           model,
		endpoint:        endpoint,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		// The caller bounds each call with a context deadline; this is a backstop.
		client: &http.Client{Timeout: cfg.Timeout() + 5*time.Second},
	}
}

// Model returns the Gemini model name.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	body := BuildRequest(input, GenerationOptions{
		Temperature:     c.temperature,
		MaxOutputTokens: c.maxOutputTokens,
		Structured:      true,
	})
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, analyzer.NewTransportError(providerName, 0, fmt.Errorf("calling gemini API: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, analyzer.NewTransportError(providerName, resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, analyzer.StatusError(providerName, resp, respBody)
	}

	text, err := ExtractText(respBody)
	if err != nil {
		return nil, analyzer.NewTransportError(providerName, resp.StatusCode, err)
	}
	return &port.GenerateOutput{Text: text, ModelUsed: c.model}, nil
}

// GenerationOptions tunes a generateContent request.
type GenerationOptions struct {
	Temperature     float32
	MaxOutputTokens int
	// Structured requests a JSON reply constrained by the input schema.
	Structured bool
}

// BuildRequest returns a generateContent request body for a single user turn.
func BuildRequest(input port.GenerateInput, opts GenerationOptions) map[string]any {
	genConfig := map[string]any{
		"temperature": opts.Temperature,
	}
	if opts.MaxOutputTokens > 0 {
		genConfig["maxOutputTokens"] = opts.MaxOutputTokens
	}
	if opts.Structured {
		genConfig["responseMimeType"] = "application/json"
		if input.Schema != nil {
			genConfig["responseSchema"] = ToGeminiSchema(input.Schema)
		}
	}

	return map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{"text": input.Prompt},
				},
			},
		},
		"generationConfig": genConfig,
	}
}

// geminiSchemaKeys are the JSON schema keywords the Gemini Schema object accepts.
var geminiSchemaKeys = map[string]bool{
	"type":        true,
	"format":      true,
	"description": true,
	"nullable":    true,
	"enum":        true,
	"properties":  true,
	"required":    true,
	"items":       true,
	"minimum":     true,
	"maximum":     true,
}

// ToGeminiSchema translates a JSON schema into Gemini's OpenAPI-subset
// Schema: type names are upper-cased and unsupported keywords dropped.
func ToGeminiSchema(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for key, val := range schema {
		if !geminiSchemaKeys[key] {
			continue
		}
		switch key {
		case "type":
			if s, ok := val.(string); ok {
				out[key] = strings.ToUpper(s)
			}
		case "properties":
			props, ok := val.(map[string]any)
			if !ok {
				continue
			}
			converted := make(map[string]any, len(props))
			for name, p := range props {
				if pm, ok := p.(map[string]any); ok {
					converted[name] = ToGeminiSchema(pm)
				}
			}
			out[key] = converted
		case "items":
			if im, ok := val.(map[string]any); ok {
				out[key] = ToGeminiSchema(im)
			}
		default:
			out[key] = val
		}
	}
	return out
}

// generateContentResponse models the generateContent API response.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// ExtractText returns the concatenated text parts of the first candidate.
func ExtractText(body []byte) (string, error) {
	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API: no parts (finish reason %q)", resp.Candidates[0].FinishReason)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
