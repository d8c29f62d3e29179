package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"claimrisk/internal/analyzer"
	"claimrisk/internal/analyzer/gemini"
	"claimrisk/internal/config"
	"claimrisk/internal/port"
)

const (
	providerName = "vertex"
	cloudScope   = "https://www.googleapis.com/auth/cloud-platform"
)

func init() {
	analyzer.RegisterProvider(providerName, func(cfg *config.ModelConfig) (port.ModelClient, error) {
		return NewClient(cfg)
	})
}

// Client calls a tuned model deployed on a Vertex AI endpoint with a bearer
// token from Application Default Credentials. Replies are free-form text
// that may be wrapped in markdown fences.
type Client struct {
	endpointURL     string
	model           string
	temperature     float32
	maxOutputTokens int
	client          *http.Client

	tokenMu     sync.Mutex
	tokenSource oauth2.TokenSource
	newSource   func(ctx context.Context) (oauth2.TokenSource, error)
}

// NewClient creates a Vertex endpoint client. Credentials are resolved
// lazily on the first successful call and reused afterwards.
func NewClient(cfg *config.ModelConfig) (*Client, error) {
	if cfg.Project == "" || cfg.Location == "" || cfg.Endpoint == "" {
		return nil, fmt.Errorf("vertex provider requires project, location and endpoint")
	}
	url := fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/endpoints/%s:generateContent",
		cfg.Location, cfg.Project, cfg.Location, cfg.Endpoint)
	return newClient(cfg, url, func(ctx context.Context) (oauth2.TokenSource, error) {
		return google.DefaultTokenSource(ctx, cloudScope)
	}), nil
}

// NewClientWithTokenSource creates a client with a fixed URL and token source (for testing).
func NewClientWithTokenSource(cfg *config.ModelConfig, endpointURL string, ts oauth2.TokenSource) *Client {
	return newClient(cfg, endpointURL, func(context.Context) (oauth2.TokenSource, error) {
		return ts, nil
	})
}

func newClient(cfg *config.ModelConfig, endpointURL string, newSource func(ctx context.Context) (oauth2.TokenSource, error)) *Client {
	model := cfg.Endpoint
	if model == "" {
		model = cfg.DefaultModel
	}
	return &Client{
		endpointURL:     endpointURL,
		model:           model,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		client:          &http.Client{Timeout: cfg.Timeout() + 5*time.Second},
		newSource:       newSource,
	}
}

// Model returns the endpoint identifier.
func (c *Client) Model() string {
	return c.model
}

// tokens resolves the credential source once it succeeds. A failed lookup
// is retried on the next call.
func (c *Client) tokens(ctx context.Context) (oauth2.TokenSource, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.tokenSource != nil {
		return c.tokenSource, nil
	}
	// Detached from the request: the source outlives it.
	ts, err := c.newSource(context.WithoutCancel(ctx))
	if err != nil {
		return nil, fmt.Errorf("resolving default credentials: %w", err)
	}
	c.tokenSource = oauth2.ReuseTokenSource(nil, ts)
	return c.tokenSource, nil
}

func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	ts, err := c.tokens(ctx)
	if err != nil {
		return nil, analyzer.NewTransportError(providerName, 0, err)
	}
	token, err := ts.Token()
	if err != nil {
		return nil, analyzer.NewTransportError(providerName, 0, fmt.Errorf("fetching access token: %w", err))
	}

	// Tuned endpoints do not accept a response schema; the reply is
	// normalized defensively instead.
	body := gemini.BuildRequest(port.GenerateInput{Prompt: input.Prompt}, gemini.GenerationOptions{
		Temperature:     c.temperature,
		MaxOutputTokens: c.maxOutputTokens,
	})
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, analyzer.NewTransportError(providerName, 0, fmt.Errorf("calling vertex endpoint: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, analyzer.NewTransportError(providerName, resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, analyzer.StatusError(providerName, resp, respBody)
	}

	text, err := gemini.ExtractText(respBody)
	if err != nil {
		return nil, analyzer.NewTransportError(providerName, resp.StatusCode, err)
	}
	return &port.GenerateOutput{Text: text, ModelUsed: c.model}, nil
}
