package vertex_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"claimrisk/internal/analyzer"
	"claimrisk/internal/analyzer/vertex"
	"claimrisk/internal/config"
	"claimrisk/internal/port"
)

func testConfig() *config.ModelConfig {
	return &config.ModelConfig{
		Provider:        "vertex",
		Project:         "claims-prod",
		Location:        "us-central1",
		Endpoint:        "4567",
		TimeoutSecs:     30,
		MaxOutputTokens: 512,
	}
}

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) Token() (*oauth2.Token, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &oauth2.Token{AccessToken: "adc-token", TokenType: "Bearer"}, nil
}

func TestClient_Generate_SendsBearerToken(t *testing.T) {
	fenced := "```json\n{\"risk_score\": 70, \"recommendation\": \"REVIEW\", \"reasoning\": \"Dates inconsistent.\"}\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer adc-token", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		genConfig := reqBody["generationConfig"].(map[string]interface{})
		assert.NotContains(t, genConfig, "responseSchema")
		assert.NotContains(t, genConfig, "responseMimeType")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]interface{}{{"text": fenced}}}},
			},
		})
	}))
	defer server.Close()

	client := vertex.NewClientWithTokenSource(testConfig(), server.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "adc-token"}))

	out, err := client.Generate(context.Background(), port.GenerateInput{Prompt: "p", Schema: analyzer.VerdictSchema()})

	require.NoError(t, err)
	assert.Equal(t, fenced, out.Text)
	assert.Equal(t, "4567", out.ModelUsed)
	assert.Equal(t, 70, analyzer.Normalize(out.Text).RiskScore)
}

func TestClient_Generate_ReusesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`))
	}))
	defer server.Close()

	src := &countingSource{}
	client := vertex.NewClientWithTokenSource(testConfig(), server.URL, src)

	for i := 0; i < 3; i++ {
		_, err := client.Generate(context.Background(), port.GenerateInput{Prompt: "p"})
		require.NoError(t, err)
	}
	// Tokens without an expiry stay valid, so the underlying source is hit once.
	assert.Equal(t, 1, src.calls)
}

func TestClient_Generate_TokenFailure(t *testing.T) {
	client := vertex.NewClientWithTokenSource(testConfig(), "http://127.0.0.1:0", &countingSource{err: errors.New("no credentials")})

	_, err := client.Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	var tErr *analyzer.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Contains(t, err.Error(), "no credentials")
}

func TestClient_Generate_RetriesCredentialLookupAfterFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer adc-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`))
	}))
	defer server.Close()

	lookups := 0
	client := vertex.NewClientWithSourceFunc(testConfig(), server.URL, func(context.Context) (oauth2.TokenSource, error) {
		lookups++
		if lookups == 1 {
			return nil, errors.New("metadata server unreachable")
		}
		return &countingSource{}, nil
	})

	_, err := client.Generate(context.Background(), port.GenerateInput{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata server unreachable")

	_, err = client.Generate(context.Background(), port.GenerateInput{Prompt: "p"})
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), port.GenerateInput{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, 2, lookups)
}

func TestClient_Generate_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := vertex.NewClientWithTokenSource(testConfig(), server.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "stale"}))

	_, err := client.Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	var tErr *analyzer.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, http.StatusUnauthorized, tErr.StatusCode)
}

func TestNewClient_RequiresEndpointCoordinates(t *testing.T) {
	_, err := vertex.NewClient(&config.ModelConfig{Project: "p", Location: "us-central1"})
	assert.Error(t, err)

	client, err := vertex.NewClient(testConfig())
	require.NoError(t, err)
	assert.Equal(t, "4567", client.Model())
}
