package vertex

import (
	"context"

	"golang.org/x/oauth2"

	"claimrisk/internal/config"
)

// NewClientWithSourceFunc exposes the credential resolver hook to tests.
func NewClientWithSourceFunc(cfg *config.ModelConfig, endpointURL string, newSource func(ctx context.Context) (oauth2.TokenSource, error)) *Client {
	return newClient(cfg, endpointURL, newSource)
}
